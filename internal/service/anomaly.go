package service

import (
	"context"
	"math"
	"time"

	"github.com/intentlab/intentd/internal/domain"
	"go.uber.org/zap"
)

const (
	// Below this many samples the variance is not stable; everything is
	// treated as novel and routed to extraction.
	minBaselineSamples = 3
	coldStartScore     = 10.0

	lengthWeight = 0.7
	hourWeight   = 0.3

	hoursPerDay = 24.0
)

// AnomalyScore is the gate's verdict on a piece of raw input.
type AnomalyScore struct {
	Score   float64 `json:"score"`
	Novel   bool    `json:"novel"`
	LengthZ float64 `json:"length_z"`
	HourZ   float64 `json:"hour_z"`
}

// AnomalyService scores incoming text against a running baseline of length
// and time-of-day, deciding routine versus novel.
type AnomalyService struct {
	baselines domain.BaselineStore
	params    domain.ParamsStore
	logger    *zap.Logger
}

func NewAnomalyService(baselines domain.BaselineStore, params domain.ParamsStore, logger *zap.Logger) *AnomalyService {
	return &AnomalyService{baselines: baselines, params: params, logger: logger}
}

func (s *AnomalyService) CalculateAnomalyScore(ctx context.Context, text string, at time.Time) (*AnomalyScore, error) {
	baseline, err := s.baselines.Get(ctx)
	if err != nil {
		return nil, err
	}

	if baseline.Count < minBaselineSamples {
		return &AnomalyScore{Score: coldStartScore, Novel: true}, nil
	}

	params, err := s.params.Get(ctx)
	if err != nil {
		return nil, err
	}

	lengthZ := zScore(float64(len(text)), baseline.Length)

	hour := float64(at.Hour())
	hourZ := 0.0
	if sd := math.Sqrt(baseline.Hour.Variance); sd > 0 {
		hourZ = circularDistance(hour, baseline.Hour.Mean) / sd
	}

	score := lengthWeight*lengthZ + hourWeight*hourZ
	return &AnomalyScore{
		Score:   score,
		Novel:   score > params.AnomalyThreshold,
		LengthZ: lengthZ,
		HourZ:   hourZ,
	}, nil
}

// UpdateBaseline folds the sample into both feature distributions with
// Welford's online algorithm. Runs unconditionally, routine input included.
// The hour feature uses the linear approximation; only scoring wraps it.
func (s *AnomalyService) UpdateBaseline(ctx context.Context, text string, at time.Time) (*domain.Baseline, error) {
	baseline, err := s.baselines.Get(ctx)
	if err != nil {
		return nil, err
	}

	baseline.Count++
	baseline.Length.Observe(float64(len(text)), baseline.Count)
	baseline.Hour.Observe(float64(at.Hour()), baseline.Count)

	if err := s.baselines.Update(ctx, baseline); err != nil {
		return nil, err
	}

	s.logger.Debug("baseline updated",
		zap.Int("sample_count", baseline.Count),
		zap.Float64("length_mean", baseline.Length.Mean),
		zap.Float64("hour_mean", baseline.Hour.Mean))

	return baseline, nil
}

func zScore(x float64, stats domain.FeatureStats) float64 {
	sd := math.Sqrt(stats.Variance)
	if sd == 0 {
		return 0
	}
	return math.Abs(x-stats.Mean) / sd
}

// circularDistance is the hour distance wrapped at 24.
func circularDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > hoursPerDay/2 {
		d = hoursPerDay - d
	}
	return d
}
