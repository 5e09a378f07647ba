package service

import (
	"context"
	"sync"
	"time"

	"github.com/intentlab/intentd/internal/domain"
	"go.uber.org/zap"
)

const defaultSweepInterval = 1 * time.Hour

// SweeperService periodically re-evaluates active intents so decay and
// pruning happen without waiting for fresh evidence.
type SweeperService struct {
	intents domain.IntentStore
	prop    *PropagationService
	logger  *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewSweeperService(intents domain.IntentStore, prop *PropagationService, logger *zap.Logger) *SweeperService {
	return &SweeperService{
		intents:  intents,
		prop:     prop,
		logger:   logger,
		interval: defaultSweepInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *SweeperService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the sweeper on a periodic schedule in a background goroutine.
func (s *SweeperService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("decay sweeper started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				s.RunSweep(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("decay sweeper stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the sweeper.
func (s *SweeperService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// RunSweep evaluates every active intent once. Returns counts of intents
// evaluated and pruned.
func (s *SweeperService) RunSweep(ctx context.Context) (evaluated, pruned int) {
	intents, err := s.intents.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list intents for sweep", zap.Error(err))
		return 0, 0
	}

	for _, intent := range intents {
		updated, err := s.prop.EvaluateConfidence(ctx, intent.ID)
		if err != nil {
			s.logger.Warn("sweep evaluation failed",
				zap.String("intent_id", intent.ID.String()),
				zap.Error(err))
			continue
		}
		evaluated++
		if updated.Stage == domain.StageRefuted && intent.Stage != domain.StageRefuted {
			pruned++
		}
	}

	if evaluated > 0 {
		s.logger.Info("sweep complete",
			zap.Int("evaluated", evaluated),
			zap.Int("pruned", pruned))
	}
	return evaluated, pruned
}
