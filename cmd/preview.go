package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"themeforge/internal/preview"
	"themeforge/internal/shared"
)

// Preview renders a cached theme to a standalone HTML document.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	outputFile := cmd.String("output")
	open := cmd.Bool("open")

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

	html := preview.Render(theme.Files(), preview.Options{
		ShopName: theme.BrandName(),
		Colors:   theme.Colors(),
	})

	if open && outputFile == "" {
		outputFile = filepath.Join(os.TempDir(), fmt.Sprintf("themeforge_preview_%s.html", id))
	}

	if outputFile == "" {
		return r.writePlain("%s", html)
	}

	if err := os.WriteFile(outputFile, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	r.logger.Info("preview written", "file", outputFile)
	r.writePlain("✓ Preview written to %s\n", outputFile)

	if open {
		if err := shared.OpenBrowser("file://" + outputFile); err != nil {
			r.logger.Warnf("failed to open browser %v", err)
			r.writePlain("Open it manually: file://%s\n", outputFile)
		}
	}

	return nil
}
