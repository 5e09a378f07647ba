package domain

import "time"

// FeatureStats holds the running mean and variance of a single feature,
// maintained with Welford's online algorithm.
type FeatureStats struct {
	Mean     float64 `json:"mean"`
	M2       float64 `json:"m2"`
	Variance float64 `json:"variance"`
}

// Observe folds a new sample into the stats. count is the total sample count
// including this observation.
func (f *FeatureStats) Observe(x float64, count int) {
	delta := x - f.Mean
	f.Mean += delta / float64(count)
	delta2 := x - f.Mean
	f.M2 += delta * delta2
	f.Variance = f.M2 / float64(count)
}

// Baseline is the process-wide statistical record the anomaly gate scores
// against. Singleton: created lazily with a zero prior, never deleted.
type Baseline struct {
	Count     int          `json:"count"`
	Length    FeatureStats `json:"length"`
	Hour      FeatureStats `json:"hour"`
	UpdatedAt time.Time    `json:"updated_at"`
}
