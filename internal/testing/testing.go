// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"themeforge/internal/models"
)

// MockService is a test double for [services.Service]
type MockService struct {
	Themes     []models.Theme
	Generated  *models.Theme
	Err        error
	DeletedIDs []string
}

func (m *MockService) Generate(ctx context.Context, req models.GenerationRequest) (*models.Theme, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Generated, nil
}

func (m *MockService) ListThemes(ctx context.Context) ([]models.Theme, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Themes, nil
}

func (m *MockService) GetTheme(ctx context.Context, themeID string) (*models.Theme, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Themes {
		if m.Themes[i].ID == themeID {
			return &m.Themes[i], nil
		}
	}
	return nil, errors.New("theme not found")
}

func (m *MockService) UpdateTheme(ctx context.Context, theme *models.Theme) (*models.Theme, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return theme, nil
}

func (m *MockService) DeleteTheme(ctx context.Context, themeID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.DeletedIDs = append(m.DeletedIDs, themeID)
	return nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
