package domain

import "context"

// ExtractedPerson, ExtractedIntent and ExtractedRelation mirror the schema
// the extraction collaborator must return. Missing arrays are tolerated;
// anything that does not parse as this schema is an extraction failure.

type ExtractedPerson struct {
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Confidence float64 `json:"confidence"`
}

type ExtractedIntent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Stage       string   `json:"stage"`
	Priority    int      `json:"priority"`
	Precision   float64  `json:"precision"`
	Tags        []string `json:"tags"`
}

// ExtractedRelation links a person to an intent by name. Source is a person
// name or "Self"; Target is an intent title from the same extraction.
type ExtractedRelation struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

type Extraction struct {
	Persons   []ExtractedPerson   `json:"persons"`
	Intents   []ExtractedIntent   `json:"intents"`
	Relations []ExtractedRelation `json:"relations"`
	Summary   string              `json:"summary"`
}

// ExtractorClient converts raw text into candidate persons, intents and
// relations. Implementations live in internal/extract.
type ExtractorClient interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}
