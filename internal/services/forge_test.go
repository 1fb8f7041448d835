package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"themeforge/internal/models"
	"themeforge/internal/shared"
	th "themeforge/internal/testing"
)

func sampleWireTheme() forgeTheme {
	return forgeTheme{
		ID:         "thm_001",
		Name:       "Aurora",
		ShopDomain: "aurora.myshopify.com",
		Files: map[string]string{
			"layout/theme.liquid":    "<html>{{ content_for_layout }}</html>",
			"templates/index.liquid": "{% section 'hero' %}",
		},
	}
}

func newTestForge(t *testing.T, handler http.HandlerFunc) (*ForgeService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	// Tests exercise the HTTP surface directly, so the gate is the same
	// plain client as the session path.
	svc := NewForgeService(srv.URL, srv.Client(), srv.Client(), nil)
	return svc, srv
}

func TestForgeServiceThemes(t *testing.T) {
	ctx := context.Background()

	t.Run("Generate posts payload and returns theme", func(t *testing.T) {
		var captured generatePayload
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/v1/themes/generate" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("failed to decode payload: %v", err)
			}
			json.NewEncoder(w).Encode(sampleWireTheme())
		})

		theme, err := svc.Generate(ctx, models.GenerationRequest{
			Brand:  models.BrandProfile{Name: "Aurora Goods", Tagline: "Northern light"},
			Colors: models.ColorScheme{Primary: "#112233", Secondary: "#445566", Background: "#ffffff"},
			Vision: "minimal scandinavian storefront",
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if captured.Brand.Name != "Aurora Goods" {
			t.Errorf("Expected brand name in payload, got %q", captured.Brand.Name)
		}
		if captured.Colors.Primary != "#112233" {
			t.Errorf("Expected primary color in payload, got %q", captured.Colors.Primary)
		}
		if theme.ID != "thm_001" || len(theme.Files) != 2 {
			t.Errorf("Unexpected theme: %+v", theme)
		}
	})

	t.Run("Generate maps backend failure", func(t *testing.T) {
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":{"code":"generation_failed","message":"model declined"}}`))
		})

		_, err := svc.Generate(ctx, models.GenerationRequest{})
		if !errors.Is(err, shared.ErrGenerationFailed) {
			t.Errorf("Expected ErrGenerationFailed, got %v", err)
		}
	})

	t.Run("ListThemes returns converted themes", func(t *testing.T) {
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/themes" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(forgeThemeList{Themes: []forgeTheme{sampleWireTheme()}})
		})

		themes, err := svc.ListThemes(ctx)
		if err != nil {
			t.Fatalf("ListThemes failed: %v", err)
		}
		if len(themes) != 1 || themes[0].Name != "Aurora" {
			t.Errorf("Unexpected themes: %+v", themes)
		}
	})

	t.Run("GetTheme unknown ID maps to ErrThemeNotFound", func(t *testing.T) {
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"theme_not_found","message":"no such theme"}}`))
		})

		_, err := svc.GetTheme(ctx, "thm_missing")
		if !errors.Is(err, shared.ErrThemeNotFound) {
			t.Errorf("Expected ErrThemeNotFound, got %v", err)
		}
	})

	t.Run("UpdateTheme sends full wire theme", func(t *testing.T) {
		var captured forgeTheme
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/v1/themes/thm_001" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			json.NewDecoder(r.Body).Decode(&captured)
			json.NewEncoder(w).Encode(captured)
		})

		theme := sampleWireTheme().toModel()
		theme.Name = "Aurora v2"
		updated, err := svc.UpdateTheme(ctx, &theme)
		if err != nil {
			t.Fatalf("UpdateTheme failed: %v", err)
		}
		if captured.Name != "Aurora v2" || updated.Name != "Aurora v2" {
			t.Errorf("Expected renamed theme round-tripped, got %q / %q", captured.Name, updated.Name)
		}
	})

	t.Run("DeleteTheme issues DELETE", func(t *testing.T) {
		var method, path string
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		})

		if err := svc.DeleteTheme(ctx, "thm_001"); err != nil {
			t.Fatalf("DeleteTheme failed: %v", err)
		}
		if method != http.MethodDelete || path != "/v1/themes/thm_001" {
			t.Errorf("unexpected request: %s %s", method, path)
		}
	})

	t.Run("Transport failure surfaces error", func(t *testing.T) {
		broken := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("connection reset"))}
		svc := NewForgeService("http://forge.invalid", broken, broken, nil)

		if _, err := svc.ListThemes(ctx); err == nil {
			t.Error("Expected error when the transport fails")
		}
	})

	t.Run("Server error maps to ErrServiceUnavailable", func(t *testing.T) {
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := svc.ListThemes(ctx)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("Expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestForgeServiceSession(t *testing.T) {
	ctx := context.Background()

	t.Run("RefreshSession exchanges refresh token", func(t *testing.T) {
		var captured map[string]string
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/session/refresh" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewDecoder(r.Body).Decode(&captured)
			json.NewEncoder(w).Encode(forgeSession{
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
				ShopDomain:   "aurora.myshopify.com",
			})
		})

		state, err := svc.RefreshSession(ctx, "old-refresh")
		if err != nil {
			t.Fatalf("RefreshSession failed: %v", err)
		}
		if captured["refresh_token"] != "old-refresh" {
			t.Errorf("Expected refresh token in body, got %q", captured["refresh_token"])
		}
		if state.AccessToken != "new-access" || state.RefreshToken != "new-refresh" {
			t.Errorf("Unexpected token state: %+v", state)
		}
	})

	t.Run("RefreshSession rejection surfaces error", func(t *testing.T) {
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"refresh_invalid","message":"revoked"}}`))
		})

		if _, err := svc.RefreshSession(ctx, "revoked"); err == nil {
			t.Error("Expected error for rejected refresh")
		}
	})

	t.Run("ExchangeCode returns token triple", func(t *testing.T) {
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/oauth/token" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(forgeSession{AccessToken: "a", RefreshToken: "r", ShopDomain: "s.myshopify.com"})
		})

		state, err := svc.ExchangeCode(ctx, "code-123", "http://localhost:8080/callback")
		if err != nil {
			t.Fatalf("ExchangeCode failed: %v", err)
		}
		if state.AccessToken != "a" || state.ShopDomain != "s.myshopify.com" {
			t.Errorf("Unexpected token state: %+v", state)
		}
	})

	t.Run("ExchangeCode failure wraps ErrAuthFailed", func(t *testing.T) {
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":"code_invalid","message":"expired code"}}`))
		})

		_, err := svc.ExchangeCode(ctx, "stale", "http://localhost:8080/callback")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("Expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("Status active session", func(t *testing.T) {
		var bearer string
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			bearer = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(SessionStatus{Active: true, ShopDomain: "aurora.myshopify.com", Plan: "growth"})
		})

		status, err := svc.Status(ctx, "tok")
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if bearer != "Bearer tok" {
			t.Errorf("Expected bearer header, got %q", bearer)
		}
		if !status.Active || status.Plan != "growth" {
			t.Errorf("Unexpected status: %+v", status)
		}
	})

	t.Run("Status treats 401 as inactive", func(t *testing.T) {
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		status, err := svc.Status(ctx, "expired")
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if status.Active {
			t.Error("Expected inactive session for 401")
		}
	})

	t.Run("LogoutSession posts shop domain", func(t *testing.T) {
		var captured map[string]string
		svc, _ := newTestForge(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&captured)
			w.WriteHeader(http.StatusNoContent)
		})

		if err := svc.LogoutSession(ctx, "aurora.myshopify.com"); err != nil {
			t.Fatalf("LogoutSession failed: %v", err)
		}
		if captured["shop_domain"] != "aurora.myshopify.com" {
			t.Errorf("Expected shop domain in body, got %q", captured["shop_domain"])
		}
	})
}
