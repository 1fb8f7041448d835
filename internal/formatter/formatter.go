// package formatter writes generated themes to disk as uploadable theme
// directories with accompanying manifest and summary files
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"themeforge/internal/models"
	"themeforge/internal/shared"
)

// ThemeManifest is the JSON metadata written alongside an exported theme.
type ThemeManifest struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	ShopDomain string             `json:"shop_domain"`
	BrandName  string             `json:"brand_name,omitempty"`
	Vision     string             `json:"vision,omitempty"`
	Colors     models.ColorScheme `json:"colors"`
	RemoteID   string             `json:"remote_id,omitempty"`
	Files      []string           `json:"files"`
}

// Manifest builds the manifest metadata for a theme.
func Manifest(theme *models.PersistedTheme) ThemeManifest {
	return ThemeManifest{
		ID:         theme.ID(),
		Name:       theme.Name(),
		ShopDomain: theme.ShopDomain(),
		BrandName:  theme.BrandName(),
		Vision:     theme.Vision(),
		Colors:     theme.Colors(),
		RemoteID:   theme.RemoteID(),
		Files:      theme.Files().SortedPaths(),
	}
}

// ToManifestJSON generates the manifest JSON for a theme.
func ToManifestJSON(theme *models.PersistedTheme) ([]byte, error) {
	return shared.MarshalJSON(Manifest(theme), true)
}

// ExportToMarkdown renders a human-readable summary of a theme.
func ExportToMarkdown(theme *models.PersistedTheme) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", theme.Name()))

	if theme.BrandName() != "" {
		buf.WriteString(fmt.Sprintf("**Brand**: %s\n", theme.BrandName()))
	}
	buf.WriteString(fmt.Sprintf("**Shop**: %s\n", theme.ShopDomain()))

	colors := theme.Colors()
	if colors.Primary != "" || colors.Secondary != "" || colors.Background != "" {
		buf.WriteString(fmt.Sprintf("**Colors**: primary `%s`, secondary `%s`, background `%s`\n", colors.Primary, colors.Secondary, colors.Background))
	}
	buf.WriteString("\n")

	if theme.Vision() != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", theme.Vision()))
	}

	files := theme.Files()
	buf.WriteString(fmt.Sprintf("## Files (%d)\n\n", len(files)))
	for _, path := range files.SortedPaths() {
		buf.WriteString(fmt.Sprintf("- `%s`\n", path))
	}

	return buf.Bytes()
}

// ThemeExportResult contains information about files created by WriteThemeExport
type ThemeExportResult struct {
	Directory    string
	Files        []string
	ManifestFile string
	SummaryFile  string
}

// WriteThemeExport writes a theme to a directory as individual template
// files, plus manifest.json and README.md.
//
// The directory defaults to the theme ID. Template paths are written
// relative to the directory, creating subdirectories (layout/, sections/,
// templates/) as needed.
func WriteThemeExport(theme *models.PersistedTheme, outputDir string) (*ThemeExportResult, error) {
	if outputDir == "" {
		outputDir = theme.ID()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &ThemeExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	files := theme.Files()
	for _, path := range files.SortedPaths() {
		if !validTemplatePath(path) {
			return nil, fmt.Errorf("refusing to write template path %q", path)
		}

		target := filepath.Join(outputDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(target, []byte(files[path]), 0644); err != nil {
			return nil, fmt.Errorf("failed to write template file %s: %w", path, err)
		}
		result.Files = append(result.Files, target)
	}

	manifestJSON, err := ToManifestJSON(theme)
	if err != nil {
		return nil, fmt.Errorf("failed to generate manifest: %w", err)
	}

	manifestFile := filepath.Join(outputDir, "manifest.json")
	if err := os.WriteFile(manifestFile, manifestJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	result.ManifestFile = manifestFile
	result.Files = append(result.Files, manifestFile)

	summaryFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(summaryFile, ExportToMarkdown(theme), 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}
	result.SummaryFile = summaryFile
	result.Files = append(result.Files, summaryFile)

	return result, nil
}

// WriteManifest writes any manifest value as indented JSON to the given path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// validTemplatePath rejects absolute paths and path traversal so a malicious
// file set cannot write outside the export directory.
func validTemplatePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") {
		return false
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}
