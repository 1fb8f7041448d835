package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"themeforge/internal/formatter"
	"themeforge/internal/shared"
	"themeforge/internal/tasks"
)

// ThemesList lists locally cached themes.
func (r *Runner) ThemesList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	shop := cmd.String("shop")

	repo, db, err := r.openThemeStore()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if shop != "" {
		criteria["shop_domain"] = shop
	}

	themes, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}

	if useJSON {
		manifests := make([]formatter.ThemeManifest, 0, len(themes))
		for _, t := range themes {
			manifests = append(manifests, formatter.Manifest(t))
		}
		return r.writeJSON(manifests, pretty)
	}

	r.writePlain("Found %d themes:\n\n", len(themes))
	for i, t := range themes {
		r.writePlain("%d. %s\n", i+1, t.Name())
		r.writePlain("   ID: %s\n", t.ID())
		if t.BrandName() != "" {
			r.writePlain("   Brand: %s\n", t.BrandName())
		}
		if t.ShopDomain() != "" {
			r.writePlain("   Shop: %s\n", t.ShopDomain())
		}
		r.writePlain("   Created: %s\n", t.CreatedAt().Format("2006-01-02 15:04"))
		r.writePlain("\n")
	}

	return nil
}

// ThemesShow displays a cached theme with its file listing.
func (r *Runner) ThemesShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: theme ID is required", shared.ErrMissingArgument)
	}

	repo, db, err := r.openThemeStore()
	if err != nil {
		return err
	}
	defer db.Close()

	theme, err := repo.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.Manifest(theme), true)
	}

	r.writePlain("%s", string(formatter.ExportToMarkdown(theme)))
	return nil
}

// ThemesDelete removes a cached theme.
func (r *Runner) ThemesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: theme ID is required", shared.ErrMissingArgument)
	}

	repo, db, err := r.openThemeStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.Delete(id); err != nil {
		return err
	}

	r.logger.Info("theme deleted", "id", id)
	r.writePlain("✓ Theme %s deleted\n", id)
	return nil
}

// ThemesExport writes cached themes to disk as theme directories.
func (r *Runner) ThemesExport(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	all := cmd.Bool("all")
	outputDir := cmd.String("output")
	workers := cmd.Int("workers")

	if len(ids) == 0 && !all {
		return fmt.Errorf("%w: pass --id or --all", shared.ErrMissingArgument)
	}

	repo, db, err := r.openThemeStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if all {
		themes, err := repo.List(map[string]any{})
		if err != nil {
			return fmt.Errorf("failed to list themes: %w", err)
		}
		ids = ids[:0]
		for _, t := range themes {
			ids = append(ids, t.ID())
		}
	}

	if len(ids) == 0 {
		r.writePlain("No themes to export\n")
		return nil
	}

	engine := tasks.NewThemeEngine(r.forge, repo)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchTheme:
				r.writePlain("→ %s\n", update.Message)
			case tasks.ExportTheme:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := engine.BulkExport(ctx, progressCh, ids, tasks.BulkExportOpts{
		OutputDir:  outputDir,
		NumWorkers: workers,
	})
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Exported: %d/%d themes\n", result.SuccessfulExports, result.TotalThemes)
	r.writePlain("Output: %s\n", result.OutputDirectory)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d themes:\n", result.FailedExports)
		for _, report := range result.Results {
			if !report.Success {
				r.writePlain("  - %s: %v\n", report.ThemeID, report.Error)
			}
		}
	}

	return nil
}
