package llm

import "context"

// MockClient is a configurable Client for tests.
type MockClient struct {
	Category string
	Err      error
	Calls    int
}

func (m *MockClient) ClassifyNews(_ context.Context, _, _ string) (string, error) {
	m.Calls++

	if m.Err != nil {
		return "", m.Err
	}

	return m.Category, nil
}
