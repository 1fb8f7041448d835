package tasks

import (
	"fmt"

	"themeforge/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SubmitRequest Phase = iota
	AwaitGeneration
	RenderPreview
	CacheTheme
	FetchTheme
	ExportTheme
)

func (p Phase) String() string {
	switch p {
	case SubmitRequest:
		return "submit_request"
	case AwaitGeneration:
		return "await_generation"
	case RenderPreview:
		return "render_preview"
	case CacheTheme:
		return "cache_theme"
	case FetchTheme:
		return "fetch_theme"
	case ExportTheme:
		return "export_theme"
	default:
		return ""
	}
}

func submitRequestUpdate(brandName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitRequest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Submitting generation request for %s...", brandName),
	}
}

func generatedUpdate(theme *models.Theme) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AwaitGeneration,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Theme generated: %s (%d files)", theme.Name, len(theme.Files)),
		Data:    theme,
	}
}

func renderPreviewUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderPreview,
		Step:    1,
		Total:   1,
		Message: "Rendering local preview...",
	}
}

func cacheThemeUpdate(localID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheTheme,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Theme cached locally (ID: %s)", localID),
	}
}

func fetchThemeUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTheme,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Loading theme %s...", step, total, id),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTheme,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTheme,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
