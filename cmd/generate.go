package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"themeforge/internal/models"
	"themeforge/internal/shared"
	"themeforge/internal/tasks"
	"themeforge/internal/ui"
)

// Generate creates a theme from a brand description.
//
// With --brand the request is assembled from flags and runs non-interactively;
// otherwise the interactive wizard collects it.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	if r.forge == nil {
		return fmt.Errorf("%w: Forge service not initialized", shared.ErrServiceUnavailable)
	}

	r.lifecycle.Initialize(ctx)

	engine := r.engine
	var closeStore func()
	if !cmd.Bool("no-cache") {
		repo, db, err := r.openThemeStore()
		if err != nil {
			r.logger.Warn("theme cache unavailable, continuing without it", "error", err)
		} else {
			engine = tasks.NewThemeEngine(r.forge, repo)
			closeStore = func() { db.Close() }
		}
	}
	if closeStore != nil {
		defer closeStore()
	}

	if cmd.String("brand") != "" {
		return r.generateFromFlags(ctx, cmd, engine)
	}

	return r.generateWithWizard(ctx, cmd, engine)
}

func (r *Runner) generateFromFlags(ctx context.Context, cmd *cli.Command, engine *tasks.ThemeEngine) error {
	req := models.GenerationRequest{
		Brand: models.BrandProfile{
			Name:     cmd.String("brand"),
			Tagline:  cmd.String("tagline"),
			Industry: cmd.String("industry"),
		},
		Colors: models.ColorScheme{
			Primary:    cmd.String("primary"),
			Secondary:  cmd.String("secondary"),
			Background: cmd.String("background"),
		},
		Vision: cmd.String("vision"),
	}

	for _, c := range []string{req.Colors.Primary, req.Colors.Secondary, req.Colors.Background} {
		if c != "" && !shared.IsHexColor(c) {
			return fmt.Errorf("%w: %q is not a hex color", shared.ErrInvalidFlag, c)
		}
	}

	r.logger.Info("starting generation", "brand", req.Brand.Name)
	useJSON := cmd.Bool("json")

	var progressCh chan tasks.ProgressUpdate
	if !useJSON {
		r.writePlain("Generating theme for %s...\n\n", req.Brand.Name)
		progressCh = make(chan tasks.ProgressUpdate, 50)
		go func() {
			for update := range progressCh {
				switch update.Phase {
				case tasks.SubmitRequest:
					r.writePlain("→ %s\n", update.Message)
				case tasks.AwaitGeneration:
					r.writePlain("✓ %s\n", update.Message)
				case tasks.RenderPreview:
					r.writePlain("→ %s\n", update.Message)
				case tasks.CacheTheme:
					r.writePlain("✓ %s\n", update.Message)
				}
			}
		}()
	}

	result, err := engine.Generate(ctx, progressCh, req)
	if progressCh != nil {
		close(progressCh)
	}

	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(generateSummary(result), true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Generation Complete!")
	r.writePlain("Theme: %s\n", result.Theme.Name)
	r.writePlain("Files: %d\n", result.FileCount)
	r.writePlain("Time: %s\n", result.Elapsed.Round(time.Millisecond))
	if result.LocalID != "" {
		r.writePlain("Cached as: %s\n", result.LocalID)
		r.writePlain("\nPreview it with: themeforge preview %s --open\n", result.LocalID)
	} else {
		r.writePlain("Theme was not cached locally\n")
	}

	return nil
}

func (r *Runner) generateWithWizard(ctx context.Context, cmd *cli.Command, engine *tasks.ThemeEngine) error {
	// Redirect logs to file to avoid interfering with wizard rendering
	fileLogger, err := shared.NewFileLogger("./tmp/themeforge-wizard.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	draft := draftPath()
	model := ui.NewModel(ctx, engine, func(req models.GenerationRequest) error {
		return saveDraft(draft, req)
	})

	if req, ok := loadDraft(draft); ok {
		model.SeedRequest(req)
	}

	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running wizard: %w", err)
	}

	wizard, ok := final.(*ui.Model)
	if !ok {
		return nil
	}

	result, runErr := wizard.Result()
	if runErr != nil {
		return runErr
	}
	if result == nil {
		// Wizard was quit before generating; the draft stays for next time.
		return nil
	}

	os.Remove(draft)

	r.writePlain("✓ Theme generated: %s (%d files)\n", result.Theme.Name, result.FileCount)
	if result.LocalID != "" {
		r.writePlain("Preview it with: themeforge preview %s --open\n", result.LocalID)
	}
	return nil
}

func generateSummary(result *tasks.GenerationRunResult) map[string]any {
	return map[string]any{
		"theme":      result.Theme.Name,
		"remote_id":  result.Theme.ID,
		"local_id":   result.LocalID,
		"file_count": result.FileCount,
		"elapsed_ms": result.Elapsed.Milliseconds(),
	}
}

// saveDraft persists an in-progress wizard request.
func saveDraft(path string, req models.GenerationRequest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := shared.MarshalJSON(req, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// loadDraft restores a previously saved wizard request, if one exists.
func loadDraft(path string) (models.GenerationRequest, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.GenerationRequest{}, false
	}

	var req models.GenerationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return models.GenerationRequest{}, false
	}
	return req, true
}
