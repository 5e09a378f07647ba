package extract

import (
	"context"

	"github.com/intentlab/intentd/internal/domain"
)

// MockClient is a configurable extraction client for testing.
// Set the response fields to control what Extract returns.
type MockClient struct {
	ExtractResponse *domain.Extraction
	ExtractError    error

	// Call tracking for assertions
	ExtractCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		ExtractResponse: &domain.Extraction{
			Summary: "Mock extraction",
		},
	}
}

func (c *MockClient) Extract(ctx context.Context, text string) (*domain.Extraction, error) {
	c.ExtractCalls = append(c.ExtractCalls, text)
	if c.ExtractError != nil {
		return nil, c.ExtractError
	}
	return c.ExtractResponse, nil
}
