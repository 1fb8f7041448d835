package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"themeforge/internal/auth"
	"themeforge/internal/services"
	"themeforge/internal/shared"
	th "themeforge/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			forge := services.NewForgeService("", nil, nil, logger)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Forge:      forge,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.forge != forge {
				t.Error("expected forge to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be created from the forge service")
			}
			if runner.configPath != "config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("without forge service no engine is created", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.engine != nil {
				t.Error("expected no engine without a forge service")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"name": "Aurora"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if output.String() != "{\"name\":\"Aurora\"}\n" {
				t.Errorf("unexpected output: %q", output.String())
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"name": "Aurora"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !strings.Contains(output.String(), "  \"name\": \"Aurora\"") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("failed write returns error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &th.FWriter{}})

			if err := runner.writeJSON(map[string]string{"name": "Aurora"}, false); err == nil {
				t.Error("expected error when the output writer fails")
			}
		})
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlainHeader("Done!")

		if !strings.Contains(output.String(), "Done!") {
			t.Errorf("expected header title, got %q", output.String())
		}
	})
}

// newTestRunner wires a full runner against a Forge test server, with an
// authenticated session persisted under a temp directory.
func newTestRunner(t *testing.T, handler http.HandlerFunc) (*Runner, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := shared.NewLogger(nil)
	forge := services.NewForgeService(srv.URL, nil, srv.Client(), logger)

	store := auth.NewStore()
	session := auth.NewSessionFile(filepath.Join(t.TempDir(), "session.json"))
	lifecycle := auth.NewLifecycle(store, session, forge, logger)
	gate := auth.NewGate(lifecycle, auth.NavigatorFunc(func() {}), srv.Client(), logger)
	forge.SetGate(gate)

	if err := lifecycle.SetAuthenticated("access-token", "refresh-token", "aurora.myshopify.com"); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Forge:     forge,
		Lifecycle: lifecycle,
		Logger:    logger,
		Output:    output,
	})
	return runner, output
}

func testApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "themeforge",
		Commands: r.register(),
	}
}

func TestGenerateCommand(t *testing.T) {
	t.Run("flag-driven run prints summary", func(t *testing.T) {
		runner, output := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/themes/generate" {
				http.NotFound(w, r)
				return
			}
			if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
				t.Errorf("unexpected auth header %q", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id":          "thm_123",
				"name":        "Aurora Dark",
				"shop_domain": "aurora.myshopify.com",
				"files": map[string]string{
					"layout/theme.liquid":    "<html><head></head><body>{{ content_for_layout }}</body></html>",
					"templates/index.liquid": "<h1>{{ shop.name }}</h1>",
				},
			})
		})

		err := testApp(runner).Run(context.Background(), []string{
			"themeforge", "generate",
			"--brand", "Aurora Goods",
			"--primary", "#1a1a2e",
			"--no-cache",
		})
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Aurora Dark") {
			t.Errorf("expected theme name in output, got %q", out)
		}
		if !strings.Contains(out, "Files: 2") {
			t.Errorf("expected file count in output, got %q", out)
		}
	})

	t.Run("json summary output", func(t *testing.T) {
		runner, output := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"id":    "thm_123",
				"name":  "Aurora Dark",
				"files": map[string]string{"templates/index.liquid": "<h1>hi</h1>"},
			})
		})

		err := testApp(runner).Run(context.Background(), []string{
			"themeforge", "generate", "--brand", "Aurora Goods", "--no-cache", "--json",
		})
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		var summary map[string]any
		if err := json.Unmarshal(output.Bytes(), &summary); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, output.String())
		}
		if summary["theme"] != "Aurora Dark" {
			t.Errorf("unexpected summary: %v", summary)
		}
	})

	t.Run("invalid color flag fails fast", func(t *testing.T) {
		runner, _ := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should reach the backend")
		})

		err := testApp(runner).Run(context.Background(), []string{
			"themeforge", "generate", "--brand", "Aurora Goods", "--primary", "blue", "--no-cache",
		})
		if err == nil {
			t.Fatal("expected error for invalid color")
		}
	})
}

func TestAuthStatusCommand(t *testing.T) {
	t.Run("active session", func(t *testing.T) {
		runner, output := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/session" {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"active":      true,
				"shop_domain": "aurora.myshopify.com",
				"plan":        "basic",
			})
		})

		err := testApp(runner).Run(context.Background(), []string{"themeforge", "auth", "status"})
		if err != nil {
			t.Fatalf("auth status failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "✓ Connected") {
			t.Errorf("expected connected status, got %q", out)
		}
		if !strings.Contains(out, "aurora.myshopify.com") {
			t.Errorf("expected shop domain, got %q", out)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		runner, output := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		err := testApp(runner).Run(context.Background(), []string{"themeforge", "auth", "status"})
		if err != nil {
			t.Fatalf("auth status failed: %v", err)
		}

		if !strings.Contains(output.String(), "✗ Not connected") {
			t.Errorf("expected disconnected status, got %q", output.String())
		}
	})
}

func TestThemesExportCommand(t *testing.T) {
	t.Run("requires ids or all flag", func(t *testing.T) {
		runner, _ := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {})

		err := testApp(runner).Run(context.Background(), []string{"themeforge", "themes", "export"})
		if err == nil {
			t.Fatal("expected error without --id or --all")
		}
	})
}
