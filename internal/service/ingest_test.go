package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/intentlab/intentd/internal/domain"
	"github.com/intentlab/intentd/internal/extract"
)

func newIngestEnv() (*testEnv, *extract.MockClient, *IngestService) {
	env := newTestEnv()
	mock := extract.NewMockClient()
	ingest := NewIngestService(env.anomaly, env.stage, mock, env.persons, env.relations, env.access, testLogger())
	return env, mock, ingest
}

func TestIngest_EmptyInput(t *testing.T) {
	_, _, ingest := newIngestEnv()

	if _, err := ingest.Ingest(context.Background(), "   \n\t"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestIngest_ColdStartRoutesToExtraction(t *testing.T) {
	_, mock, ingest := newIngestEnv()
	mock.ExtractResponse = &domain.Extraction{
		Summary: "a plan",
		Intents: []domain.ExtractedIntent{{Title: "Plan the trip", Precision: 0.3}},
	}

	result, err := ingest.Ingest(context.Background(), "thinking about a trip to Kyoto")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Novel {
		t.Fatal("expected cold-start input to be treated as novel")
	}
	if len(mock.ExtractCalls) != 1 {
		t.Fatalf("expected 1 extraction call, got %d", len(mock.ExtractCalls))
	}
	if len(result.Intents) != 1 || result.Intents[0].Title != "Plan the trip" {
		t.Fatalf("unexpected intents: %+v", result.Intents)
	}
	if result.Intents[0].Confidence != 0.3 {
		t.Fatalf("expected precision carried to confidence, got %f", result.Intents[0].Confidence)
	}
}

func TestIngest_RoutineSkipsExtraction(t *testing.T) {
	env, mock, ingest := newIngestEnv()
	seedBaseline(t, env)

	// Matches the seeded distribution: mean length, zero hour spread.
	result, err := ingest.Ingest(context.Background(), "aaaaaaaaaaaa")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Novel {
		t.Fatalf("expected routine classification, score %f", result.Score)
	}
	if len(mock.ExtractCalls) != 0 {
		t.Fatal("expected no extraction for routine input")
	}
	if len(result.Intents) != 1 {
		t.Fatalf("expected 1 raw intent, got %d", len(result.Intents))
	}
	intent := result.Intents[0]
	if intent.Confidence != defaultInitialConfidence {
		t.Fatalf("expected low-confidence raw intent, got %f", intent.Confidence)
	}
	if len(intent.Tags) != 1 || intent.Tags[0] != routineTag {
		t.Fatalf("expected routine tag, got %v", intent.Tags)
	}
}

func TestIngest_ExtractionFailurePreservesInput(t *testing.T) {
	_, mock, ingest := newIngestEnv()
	mock.ExtractError = errors.New("model unavailable")

	result, err := ingest.Ingest(context.Background(), "I should finally switch jobs this autumn")
	if err != nil {
		t.Fatalf("expected fallback, not error, got %v", err)
	}
	if !result.Fallback {
		t.Fatal("expected fallback flag set")
	}
	if len(result.Intents) != 1 {
		t.Fatalf("expected 1 fallback intent, got %d", len(result.Intents))
	}
	intent := result.Intents[0]
	if len(intent.Tags) != 1 || intent.Tags[0] != fallbackTag {
		t.Fatalf("expected fallback tag, got %v", intent.Tags)
	}
	if intent.Description != "I should finally switch jobs this autumn" {
		t.Fatalf("expected raw text preserved, got %q", intent.Description)
	}
}

func TestIngest_BaselineUpdatedUnconditionally(t *testing.T) {
	env, _, ingest := newIngestEnv()
	seedBaseline(t, env)
	before := env.baselines.updateCalls

	if _, err := ingest.Ingest(context.Background(), "aaaaaaaaaaaa"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if env.baselines.updateCalls != before+1 {
		t.Fatalf("expected baseline update for routine input, calls %d -> %d", before, env.baselines.updateCalls)
	}
}

func TestIngest_ExtractionCreatesGraph(t *testing.T) {
	env, mock, ingest := newIngestEnv()
	mock.ExtractResponse = &domain.Extraction{
		Summary: "career move",
		Persons: []domain.ExtractedPerson{{Name: "Dana", Role: "mentor", Confidence: 0.8}},
		Intents: []domain.ExtractedIntent{{Title: "Switch teams", Precision: 0.4, Tags: []string{"career"}}},
		Relations: []domain.ExtractedRelation{
			{Source: "Dana", Target: "Switch teams", Label: "encourages", Weight: 0.7},
			{Source: "Self", Target: "Switch teams", Weight: 0.9},
		},
	}

	result, err := ingest.Ingest(context.Background(), "Dana thinks I should switch teams")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Summary != "career move" {
		t.Fatalf("expected summary carried through, got %q", result.Summary)
	}
	if len(result.Persons) != 1 || result.Persons[0].Name != "Dana" {
		t.Fatalf("unexpected persons: %+v", result.Persons)
	}

	intentID := result.Intents[0].ID
	edges, err := env.relations.ListByTarget(context.Background(), domain.EndpointIntent, intentID)
	if err != nil {
		t.Fatalf("listing relations: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 person edges, got %d", len(edges))
	}

	// The implicit "Self" person is materialized on demand.
	if _, err := env.persons.GetByName(context.Background(), selfPersonName); err != nil {
		t.Fatalf("expected Self person to exist: %v", err)
	}
}

func TestIngest_UnresolvableRelationSkipped(t *testing.T) {
	env, mock, ingest := newIngestEnv()
	mock.ExtractResponse = &domain.Extraction{
		Intents: []domain.ExtractedIntent{{Title: "Learn cello", Precision: 0.2}},
		Relations: []domain.ExtractedRelation{
			{Source: "Nobody Known", Target: "Learn cello", Weight: 0.5},
			{Source: "Self", Target: "missing intent", Weight: 0.5},
		},
	}

	result, err := ingest.Ingest(context.Background(), "maybe pick up the cello again")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	edges, _ := env.relations.ListByTarget(context.Background(), domain.EndpointIntent, result.Intents[0].ID)
	if len(edges) != 0 {
		t.Fatalf("expected unresolvable relations skipped, got %d edges", len(edges))
	}
}

func TestSnippet_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("word ", 40)
	got := snippet(long)
	if len([]rune(got)) != titleSnippetLen+1 {
		t.Fatalf("expected %d runes plus ellipsis, got %d", titleSnippetLen, len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if snippet("short  text\n") != "short text" {
		t.Fatal("expected whitespace collapsed")
	}
}
