package domain

import "time"

const (
	DefaultAnomalyThreshold   = 2.5
	DefaultExecutionThreshold = 0.95
	DefaultDecayRate          = 0.95
)

// SystemParameters is the singleton tunable parameter set. Only the parameter
// learner mutates it.
type SystemParameters struct {
	AnomalyThreshold   float64   `json:"anomaly_threshold"`
	ExecutionThreshold float64   `json:"execution_threshold"`
	DecayRate          float64   `json:"decay_rate"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func DefaultSystemParameters() *SystemParameters {
	return &SystemParameters{
		AnomalyThreshold:   DefaultAnomalyThreshold,
		ExecutionThreshold: DefaultExecutionThreshold,
		DecayRate:          DefaultDecayRate,
	}
}
