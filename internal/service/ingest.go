package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/intentlab/intentd/internal/domain"
	"go.uber.org/zap"
)

var ErrEmptyInput = errors.New("text is required")

const (
	selfPersonName  = "Self"
	titleSnippetLen = 60

	routineTag  = "routine"
	fallbackTag = "extraction-failed"

	defaultRelationLabel = "related_to"
)

// IngestService runs raw text through the anomaly gate. Routine input becomes
// a single low-confidence intent directly; novel input is routed to the
// extraction collaborator and its persons, intents and relations are created.
// Input whose extraction fails is preserved as a low-confidence fallback
// intent rather than dropped.
type IngestService struct {
	anomaly   *AnomalyService
	stage     *StageService
	extractor domain.ExtractorClient
	persons   domain.PersonStore
	relations domain.RelationStore
	access    domain.AccessLogStore
	logger    *zap.Logger
}

func NewIngestService(anomaly *AnomalyService, stage *StageService, extractor domain.ExtractorClient, persons domain.PersonStore, relations domain.RelationStore, access domain.AccessLogStore, logger *zap.Logger) *IngestService {
	return &IngestService{
		anomaly:   anomaly,
		stage:     stage,
		extractor: extractor,
		persons:   persons,
		relations: relations,
		access:    access,
		logger:    logger,
	}
}

type IngestResult struct {
	Novel    bool            `json:"novel"`
	Score    float64         `json:"score"`
	Fallback bool            `json:"fallback,omitempty"`
	Summary  string          `json:"summary,omitempty"`
	Intents  []domain.Intent `json:"intents"`
	Persons  []domain.Person `json:"persons,omitempty"`
}

func (s *IngestService) Ingest(ctx context.Context, text string) (*IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	now := time.Now()
	score, err := s.anomaly.CalculateAnomalyScore(ctx, text, now)
	if err != nil {
		return nil, err
	}

	// The baseline absorbs every sample, routine or novel; a write failure
	// here must not lose the input itself.
	if _, err := s.anomaly.UpdateBaseline(ctx, text, now); err != nil {
		s.logger.Warn("baseline update failed", zap.Error(err))
	}

	result := &IngestResult{Novel: score.Novel, Score: score.Score}

	if !score.Novel {
		intent, err := s.createRawIntent(ctx, text, routineTag)
		if err != nil {
			return nil, err
		}
		result.Intents = append(result.Intents, *intent)
		s.logAccess(ctx, intent, "routine input")
		return result, nil
	}

	extraction, err := s.extractor.Extract(ctx, text)
	if err != nil {
		s.logger.Warn("extraction failed, preserving input as fallback intent", zap.Error(err))
		intent, cerr := s.createRawIntent(ctx, text, fallbackTag)
		if cerr != nil {
			return nil, cerr
		}
		result.Fallback = true
		result.Intents = append(result.Intents, *intent)
		s.logAccess(ctx, intent, "extraction fallback")
		return result, nil
	}

	result.Summary = extraction.Summary

	personsByName := make(map[string]*domain.Person)
	for _, ep := range extraction.Persons {
		if ep.Name == "" {
			continue
		}
		person := &domain.Person{
			Name:       ep.Name,
			Role:       ep.Role,
			Confidence: clamp01(ep.Confidence),
		}
		if err := s.persons.Upsert(ctx, person); err != nil {
			s.logger.Warn("person upsert failed", zap.String("name", ep.Name), zap.Error(err))
			continue
		}
		personsByName[strings.ToLower(person.Name)] = person
		result.Persons = append(result.Persons, *person)
	}

	intentsByTitle := make(map[string]*domain.Intent)
	for _, ei := range extraction.Intents {
		if ei.Title == "" {
			continue
		}
		precision := ei.Precision
		intent, err := s.stage.CreateIntent(ctx, CreateIntentInput{
			Title:       ei.Title,
			Description: ei.Description,
			Stage:       validStageHint(ei.Stage),
			Precision:   &precision,
			Priority:    ei.Priority,
			Tags:        ei.Tags,
		})
		if err != nil {
			s.logger.Warn("extracted intent creation failed", zap.String("title", ei.Title), zap.Error(err))
			continue
		}
		intentsByTitle[strings.ToLower(intent.Title)] = intent
		result.Intents = append(result.Intents, *intent)
	}

	for _, er := range extraction.Relations {
		s.createRelation(ctx, er, personsByName, intentsByTitle)
	}

	if len(result.Intents) > 0 {
		s.logAccess(ctx, &result.Intents[0], "novel input extracted")
	}
	return result, nil
}

func (s *IngestService) createRawIntent(ctx context.Context, text, tag string) (*domain.Intent, error) {
	precision := defaultInitialConfidence
	return s.stage.CreateIntent(ctx, CreateIntentInput{
		Title:       snippet(text),
		Description: text,
		Precision:   &precision,
		Tags:        []string{tag},
	})
}

// createRelation resolves a name-based extracted relation into a typed edge.
// Source "Self" maps to the well-known self person; unresolvable endpoints
// are skipped.
func (s *IngestService) createRelation(ctx context.Context, er domain.ExtractedRelation, personsByName map[string]*domain.Person, intentsByTitle map[string]*domain.Intent) {
	intent, ok := intentsByTitle[strings.ToLower(er.Target)]
	if !ok {
		s.logger.Warn("relation target not found in extraction", zap.String("target", er.Target))
		return
	}

	person, err := s.resolvePerson(ctx, er.Source, personsByName)
	if err != nil {
		s.logger.Warn("relation source not resolvable",
			zap.String("source", er.Source),
			zap.Error(err))
		return
	}

	label := er.Label
	if label == "" {
		label = defaultRelationLabel
	}

	relation := &domain.Relation{
		SourceType: domain.EndpointPerson,
		SourceID:   person.ID,
		TargetType: domain.EndpointIntent,
		TargetID:   intent.ID,
		Label:      label,
		Weight:     clamp01(er.Weight),
	}
	if err := s.relations.Create(ctx, relation); err != nil {
		s.logger.Warn("relation creation failed", zap.Error(err))
	}
}

func (s *IngestService) resolvePerson(ctx context.Context, name string, personsByName map[string]*domain.Person) (*domain.Person, error) {
	if name == "" || strings.EqualFold(name, selfPersonName) {
		self := &domain.Person{Name: selfPersonName, Confidence: 1.0}
		if err := s.persons.Upsert(ctx, self); err != nil {
			return nil, err
		}
		return self, nil
	}
	if person, ok := personsByName[strings.ToLower(name)]; ok {
		return person, nil
	}
	return s.persons.GetByName(ctx, name)
}

func (s *IngestService) logAccess(ctx context.Context, intent *domain.Intent, detail string) {
	refID := intent.ID
	if err := s.access.Append(ctx, &domain.AccessEvent{
		Kind:   domain.AccessIngest,
		RefID:  &refID,
		Detail: detail,
	}); err != nil {
		s.logger.Warn("failed to log ingestion event", zap.Error(err))
	}
}

func validStageHint(hint string) string {
	hint = strings.ToUpper(strings.TrimSpace(hint))
	if domain.ValidStage(hint) {
		return hint
	}
	return ""
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= titleSnippetLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleSnippetLen]) + "…"
}
