package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"go.uber.org/zap"
)

const (
	learningRate = 0.01

	minExecutionThreshold = 0.85
	maxExecutionThreshold = 0.99
)

var ErrUnknownReward = errors.New("reward must be +1 or -1")

// LearnerService adapts the execution threshold from approval feedback.
// Acceptance lowers the threshold by the learning rate; rejection raises it
// twice as fast, biasing the system toward caution. Removing the task from
// the queue is the caller's responsibility.
type LearnerService struct {
	params domain.ParamsStore
	logger *zap.Logger
}

func NewLearnerService(params domain.ParamsStore, logger *zap.Logger) *LearnerService {
	return &LearnerService{params: params, logger: logger}
}

func (s *LearnerService) ProcessReward(ctx context.Context, taskID uuid.UUID, reward int) (*domain.SystemParameters, error) {
	params, err := s.params.Get(ctx)
	if err != nil {
		return nil, err
	}

	before := params.ExecutionThreshold
	switch reward {
	case 1:
		params.ExecutionThreshold -= learningRate
		if params.ExecutionThreshold < minExecutionThreshold {
			params.ExecutionThreshold = minExecutionThreshold
		}
	case -1:
		params.ExecutionThreshold += 2 * learningRate
		if params.ExecutionThreshold > maxExecutionThreshold {
			params.ExecutionThreshold = maxExecutionThreshold
		}
	default:
		return nil, ErrUnknownReward
	}

	if err := s.params.Update(ctx, params); err != nil {
		return nil, err
	}

	s.logger.Info("execution threshold adjusted",
		zap.String("task_id", taskID.String()),
		zap.Int("reward", reward),
		zap.Float64("old_threshold", before),
		zap.Float64("new_threshold", params.ExecutionThreshold))

	return params, nil
}

func (s *LearnerService) GetSystemParameters(ctx context.Context) (*domain.SystemParameters, error) {
	return s.params.Get(ctx)
}
