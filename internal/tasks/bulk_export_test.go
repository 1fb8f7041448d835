package tasks

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"themeforge/internal/models"
	th "themeforge/internal/testing"
)

func storeWithThemes(t *testing.T, count int) (*memoryStore, []string) {
	t.Helper()
	store := newMemoryStore()
	ids := make([]string, 0, count)

	for i := 0; i < count; i++ {
		theme := models.NewPersistedTheme(
			models.Theme{
				ID:         "thm_remote",
				Name:       "Aurora",
				ShopDomain: "aurora.myshopify.com",
				Files: models.TemplateFileSet{
					"layout/theme.liquid":    "<html>{{ content_for_layout }}</html>",
					"templates/index.liquid": "<p>home</p>",
				},
			},
			models.GenerationRequest{Brand: models.BrandProfile{Name: "Aurora Goods"}},
		)
		if err := store.Create(theme); err != nil {
			t.Fatalf("Failed to seed store: %v", err)
		}
		ids = append(ids, theme.ID())
	}

	return store, ids
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	t.Run("exports all themes and writes manifest", func(t *testing.T) {
		store, ids := storeWithThemes(t, 3)
		engine := NewThemeEngine(nil, store)

		outputDir := filepath.Join(t.TempDir(), "export")
		result, err := engine.BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: outputDir, NumWorkers: 2})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if result.SuccessfulExports != 3 || result.FailedExports != 0 {
			t.Errorf("Expected 3 successes, got %d/%d", result.SuccessfulExports, result.FailedExports)
		}

		for _, id := range ids {
			th.AssertDirExists(t, filepath.Join(outputDir, id))
			th.AssertFileExists(t, filepath.Join(outputDir, id, "manifest.json"))
			th.AssertFileExists(t, filepath.Join(outputDir, id, "templates", "index.liquid"))
		}

		th.AssertFileExists(t, result.ManifestPath)
		var manifest exportManifest
		if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("Failed to parse manifest: %v", err)
		}
		if manifest.Exported != 3 || len(manifest.Themes) != 3 {
			t.Errorf("Unexpected manifest: %+v", manifest)
		}
	})

	t.Run("unknown theme reported as failure without aborting", func(t *testing.T) {
		store, ids := storeWithThemes(t, 1)
		engine := NewThemeEngine(nil, store)

		outputDir := filepath.Join(t.TempDir(), "export")
		result, err := engine.BulkExport(ctx, nil, append(ids, "missing"), BulkExportOpts{OutputDir: outputDir})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("Expected 1 success and 1 failure, got %d/%d", result.SuccessfulExports, result.FailedExports)
		}

		var manifest exportManifest
		if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("Failed to parse manifest: %v", err)
		}
		failed := 0
		for _, entry := range manifest.Themes {
			if entry.Error != "" {
				failed++
			}
		}
		if failed != 1 {
			t.Errorf("Expected 1 failed manifest entry, got %d", failed)
		}
	})

	t.Run("progress updates emitted", func(t *testing.T) {
		store, ids := storeWithThemes(t, 2)
		engine := NewThemeEngine(nil, store)

		progress := make(chan ProgressUpdate, 32)
		outputDir := filepath.Join(t.TempDir(), "export")
		if _, err := engine.BulkExport(ctx, progress, ids, BulkExportOpts{OutputDir: outputDir}); err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		close(progress)
		phases := map[Phase]int{}
		for update := range progress {
			phases[update.Phase]++
		}
		if phases[FetchTheme] == 0 {
			t.Error("Expected FetchTheme progress updates")
		}
		if phases[ExportTheme] != 2 {
			t.Errorf("Expected 2 ExportTheme updates, got %d", phases[ExportTheme])
		}
	})

	t.Run("nil store fails", func(t *testing.T) {
		engine := NewThemeEngine(nil, nil)
		if _, err := engine.BulkExport(ctx, nil, []string{"x"}, BulkExportOpts{}); err == nil {
			t.Error("Expected error without a store")
		}
	})
}
