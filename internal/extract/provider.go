package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/intentlab/intentd/internal/domain"
)

// ErrUnparseable is returned when the collaborator's output does not parse as
// the extraction schema. The ingestion layer decides what happens to the raw
// input.
var ErrUnparseable = errors.New("extraction response unparseable")

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// NewClient creates an extraction client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty
// (except for mock).
func NewClient(provider, apiKey string) (domain.ExtractorClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown extraction provider: %s (valid options: openai, anthropic, mock)", provider)
	}
}

// parseExtraction decodes a model response into the extraction schema.
// Markdown fences are tolerated; anything else that fails to decode is an
// extraction failure. Missing arrays are fine, they decode to nil.
func parseExtraction(raw string) (*domain.Extraction, error) {
	raw = stripFences(raw)

	var extraction domain.Extraction
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return &extraction, nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
	}
	return strings.TrimSpace(raw)
}
