package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"themeforge/internal/formatter"
	"themeforge/internal/models"
	"themeforge/internal/shared"
)

// BulkExportOpts contains configuration for bulk theme exports.
type BulkExportOpts struct {
	OutputDir  string  // Base output directory (default: theme_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 4)
	RateLimit  float64 // Theme loads per second (default: 5)
}

// ThemeExportJob carries one loaded theme to an export worker.
type ThemeExportJob struct {
	ThemeID string
	Theme   *models.PersistedTheme
}

// ThemeExportReport records the outcome of exporting one theme.
type ThemeExportReport struct {
	ThemeID   string
	ThemeName string
	Success   bool
	Files     []string
	Error     error
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalThemes       int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []ThemeExportReport
}

// exportManifest is the JSON shape of the manifest written after a run.
type exportManifest struct {
	Exported  int                   `json:"exported"`
	Failed    int                   `json:"failed"`
	Directory string                `json:"directory"`
	Themes    []exportManifestEntry `json:"themes"`
}

type exportManifestEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Files int    `json:"files"`
	Error string `json:"error,omitempty"`
}

// BulkExport exports multiple cached themes concurrently with rate limiting and progress tracking.
//
// This method implements a worker pool pattern: a producer loads themes from
// the store under a rate limiter, workers write theme directories, and a
// manifest file summarizing the run is written last. Partial failures are
// reported per theme, never aborting the whole run.
func (e *ThemeEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: theme store not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("theme_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalThemes:     len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ThemeExportReport, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan ThemeExportJob, len(ids))
	reports := make(chan ThemeExportReport, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, reports, opts)
	}

	go func() {
		defer close(jobs)
		for i, themeID := range ids {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, fetchThemeUpdate(i+1, len(ids), themeID))

			theme, err := e.store.Get(themeID)
			if err != nil {
				reports <- ThemeExportReport{
					ThemeID:   themeID,
					ThemeName: fmt.Sprintf("Unknown (%s)", themeID),
					Success:   false,
					Error:     fmt.Errorf("failed to load theme: %w", err),
				}
				continue
			}

			jobs <- ThemeExportJob{ThemeID: themeID, Theme: theme}
		}
	}()

	go func() {
		wg.Wait()
		close(reports)
	}()

	completed := 0
	for report := range reports {
		completed++
		result.Results = append(result.Results, report)

		if report.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), report.ThemeName, len(report.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), report.ThemeName, report.Error))
		}
	}

	manifest := exportManifest{
		Exported:  result.SuccessfulExports,
		Failed:    result.FailedExports,
		Directory: opts.OutputDir,
	}
	for _, report := range result.Results {
		entry := exportManifestEntry{
			ID:    report.ThemeID,
			Name:  report.ThemeName,
			Files: len(report.Files),
		}
		if report.Error != nil {
			entry.Error = report.Error.Error()
		}
		manifest.Themes = append(manifest.Themes, entry)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that writes theme directories from the jobs channel.
func (e *ThemeEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ThemeExportJob,
	reports chan<- ThemeExportReport,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		reports <- exportSingleTheme(job, opts)
	}
}

// exportSingleTheme writes one theme directory and reports the outcome.
func exportSingleTheme(job ThemeExportJob, opts BulkExportOpts) ThemeExportReport {
	report := ThemeExportReport{
		ThemeID:   job.ThemeID,
		ThemeName: job.Theme.Name(),
		Files:     []string{},
	}

	dir := filepath.Join(opts.OutputDir, job.ThemeID)
	exported, err := formatter.WriteThemeExport(job.Theme, dir)
	if err != nil {
		report.Error = fmt.Errorf("theme export failed: %w", err)
		return report
	}

	report.Files = exported.Files
	report.Success = true
	return report
}
