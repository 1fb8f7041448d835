package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"themeforge/internal/auth"
	"themeforge/internal/models"
)

// memThemes is an in-memory ThemeReader double.
type memThemes struct {
	themes map[string]*models.PersistedTheme
}

func (m *memThemes) List(criteria map[string]any) ([]*models.PersistedTheme, error) {
	out := make([]*models.PersistedTheme, 0, len(m.themes))
	for _, t := range m.themes {
		out = append(out, t)
	}
	return out, nil
}

func (m *memThemes) Get(id string) (*models.PersistedTheme, error) {
	t, ok := m.themes[id]
	if !ok {
		return nil, fmt.Errorf("theme not found: %s", id)
	}
	return t, nil
}

func dashboardTheme(id string) *models.PersistedTheme {
	theme := models.NewPersistedTheme(
		models.Theme{
			ID:         "remote-" + id,
			Name:       "Aurora Dark",
			ShopDomain: "aurora.myshopify.com",
			Files: models.TemplateFileSet{
				"layout/theme.liquid":    "<html><head></head><body>{{ content_for_layout }}</body></html>",
				"templates/index.liquid": "<h1>{{ shop.name }}</h1>",
			},
		},
		models.GenerationRequest{
			Brand:  models.BrandProfile{Name: "Aurora Goods"},
			Colors: models.ColorScheme{Primary: "#1a1a2e", Secondary: "#e94560", Background: "#ffffff"},
		},
	)
	theme.SetID(id)
	return theme
}

func newTestDashboard(authenticated bool, themes *memThemes) *Dashboard {
	session := &memSession{}
	if authenticated {
		session.session = auth.Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ShopDomain:   "aurora.myshopify.com",
		}
	}

	store := auth.NewStore()
	if authenticated {
		store.SetTokens("access", "refresh", "aurora.myshopify.com")
	}

	lifecycle := auth.NewLifecycle(store, session, &stubAPI{}, nil)
	return NewDashboard(lifecycle, session, themes, nil, nil)
}

func TestDashboard(t *testing.T) {
	themes := &memThemes{themes: map[string]*models.PersistedTheme{
		"theme-1": dashboardTheme("theme-1"),
	}}

	t.Run("login page is public", func(t *testing.T) {
		dash := newTestDashboard(false, themes)

		rec := httptest.NewRecorder()
		dash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Connect Shop") {
			t.Error("Expected login page to offer a connect action")
		}
	})

	t.Run("theme list redirects without session", func(t *testing.T) {
		dash := newTestDashboard(false, themes)

		rec := httptest.NewRecorder()
		dash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/themes", nil))

		if rec.Code != http.StatusSeeOther {
			t.Errorf("Expected redirect, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fthemes" {
			t.Errorf("Expected redirect to login with next param, got %q", loc)
		}
	})

	t.Run("theme list renders for authenticated session", func(t *testing.T) {
		dash := newTestDashboard(true, themes)

		rec := httptest.NewRecorder()
		dash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/themes", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Aurora Dark") {
			t.Error("Expected theme name in listing")
		}
	})

	t.Run("theme detail embeds preview frame", func(t *testing.T) {
		dash := newTestDashboard(true, themes)

		rec := httptest.NewRecorder()
		dash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/themes/theme-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "/preview/theme-1") {
			t.Error("Expected detail page to reference the preview route")
		}
	})

	t.Run("preview renders theme files to plain HTML", func(t *testing.T) {
		dash := newTestDashboard(true, themes)

		rec := httptest.NewRecorder()
		dash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/theme-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "<h1>Aurora Goods</h1>") {
			t.Error("Expected brand name substituted into preview")
		}
		if strings.Contains(body, "{{") || strings.Contains(body, "{%") {
			t.Error("Expected no leftover template syntax in preview")
		}
	})

	t.Run("unknown theme detail is a 404", func(t *testing.T) {
		dash := newTestDashboard(true, themes)

		rec := httptest.NewRecorder()
		dash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/themes/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("root redirects to theme list", func(t *testing.T) {
		dash := newTestDashboard(true, themes)

		rec := httptest.NewRecorder()
		dash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusSeeOther {
			t.Errorf("Expected redirect, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/themes" {
			t.Errorf("Expected redirect to /themes, got %q", loc)
		}
	})

	t.Run("logout clears session and redirects", func(t *testing.T) {
		dash := newTestDashboard(true, themes)

		rec := httptest.NewRecorder()
		dash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

		if rec.Code != http.StatusSeeOther {
			t.Errorf("Expected redirect, got %d", rec.Code)
		}
		if dash.lifecycle.Store().AccessToken() != "" {
			t.Error("Expected tokens cleared after logout")
		}
	})
}
