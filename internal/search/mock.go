package search

import "context"

// MockProvider is a mock implementation of Provider for testing
type MockProvider struct {
	FindFunc func(ctx context.Context, query string) ([]string, error)
	Queries  []string
}

func (m *MockProvider) Name() string {
	return "mock"
}

// FindVideoIDs implements the Provider interface
func (m *MockProvider) FindVideoIDs(ctx context.Context, query string) ([]string, error) {
	m.Queries = append(m.Queries, query)
	if m.FindFunc != nil {
		return m.FindFunc(ctx, query)
	}
	return nil, nil
}
