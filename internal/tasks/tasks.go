// package tasks implements theme generation and export operations.
//
// The core abstraction is Engine, which orchestrates generation runs and bulk exports.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"themeforge/internal/models"
	"themeforge/internal/preview"
	"themeforge/internal/services"
	"themeforge/internal/shared"
)

// GenerationRunResult contains all data from a full generation run.
type GenerationRunResult struct {
	Theme       *models.Theme // Generated theme with template files
	LocalID     string        // Local database ID, empty if caching was skipped or failed
	PreviewHTML string        // Self-contained preview document
	FileCount   int           // Number of template files produced
	Elapsed     time.Duration // Wall-clock generation time
}

// ThemeStore is the persistence surface the engine needs.
// Implemented by repositories.ThemeRepository.
type ThemeStore interface {
	Create(theme *models.PersistedTheme) error
	Get(id string) (*models.PersistedTheme, error)
}

// Engine defines long-running theme operations.
type Engine interface {
	// Generate performs a full generation run: submit, preview, cache.
	Generate(ctx context.Context, progress chan<- ProgressUpdate, req models.GenerationRequest) (*GenerationRunResult, error)

	// BulkExport writes multiple cached themes to disk as theme directories.
	BulkExport(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error)
}

// ThemeEngine implements Engine for theme operations.
// Contains dependencies on the Forge service and the local theme store.
type ThemeEngine struct {
	svc   services.Service
	store ThemeStore
}

// NewThemeEngine creates a new ThemeEngine with the provided service and store.
// The store may be nil, in which case generated themes are not cached.
func NewThemeEngine(svc services.Service, store ThemeStore) *ThemeEngine {
	return &ThemeEngine{
		svc:   svc,
		store: store,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ThemeEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Generate performs a full generation run against the Forge backend.
func (e *ThemeEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate, req models.GenerationRequest) (*GenerationRunResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: Forge service not initialized", shared.ErrServiceUnavailable)
	}
	if req.Brand.Name == "" {
		return nil, fmt.Errorf("%w: brand name is required", shared.ErrInvalidInput)
	}

	e.sendProgress(progress, submitRequestUpdate(req.Brand.Name))

	start := time.Now()
	theme, err := e.svc.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &GenerationRunResult{
		Theme:     theme,
		FileCount: len(theme.Files),
		Elapsed:   time.Since(start),
	}

	e.sendProgress(progress, generatedUpdate(theme))
	e.sendProgress(progress, renderPreviewUpdate())

	result.PreviewHTML = preview.Render(theme.Files, preview.Options{
		ShopName: req.Brand.Name,
		Colors:   req.Colors,
	})

	if e.store != nil {
		persisted := models.NewPersistedTheme(*theme, req)
		if err := e.store.Create(persisted); err != nil {
			// Caching is best-effort: a broken local database must not
			// discard a theme the backend already produced.
			return result, nil
		}
		result.LocalID = persisted.ID()
		e.sendProgress(progress, cacheThemeUpdate(persisted.ID()))
	}

	return result, nil
}
