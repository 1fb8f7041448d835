package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"themeforge/internal/models"
	"themeforge/internal/shared"
)

// ThemeRepository implements models.Repository[*models.PersistedTheme] for theme caching.
//
// Handles theme CRUD operations with soft delete support and remote-ID lookups.
// Template files are stored in theme_files and replaced wholesale on every write.
type ThemeRepository struct {
	db *sql.DB
}

// NewThemeRepository creates a new ThemeRepository with the given database connection
func NewThemeRepository(db *sql.DB) *ThemeRepository {
	return &ThemeRepository{db: db}
}

// Create inserts a new theme into the database with generated ID and sequence
func (r *ThemeRepository) Create(theme *models.PersistedTheme) error {
	sequence, err := NextSequence(r.db, "themes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	theme.SetID(id)
	theme.SetSequence(sequence)

	if err := theme.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	colors := theme.Colors()
	query := `
		INSERT INTO themes (id, sequence, name, shop_domain, brand_name, vision, primary_color, secondary_color, background_color, remote_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		theme.Name(),
		theme.ShopDomain(),
		theme.BrandName(),
		theme.Vision(),
		colors.Primary,
		colors.Secondary,
		colors.Background,
		theme.RemoteID(),
		theme.CreatedAt(),
		theme.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert theme: %w", err)
	}

	if err := r.replaceFiles(id, theme.Files()); err != nil {
		return err
	}

	return nil
}

// Get retrieves a theme by ID with its template files, excluding soft-deleted themes
func (r *ThemeRepository) Get(id string) (*models.PersistedTheme, error) {
	query := `
		SELECT id, sequence, name, shop_domain, brand_name, vision, primary_color, secondary_color, background_color, remote_id, created_at, updated_at, deleted_at
		FROM themes
		WHERE id = ? AND deleted_at IS NULL
	`

	theme, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	files, err := r.loadFiles(theme.ID())
	if err != nil {
		return nil, err
	}
	theme.SetFiles(files)

	return theme, nil
}

// GetByRemoteID retrieves a theme by its backend-assigned identifier
func (r *ThemeRepository) GetByRemoteID(remoteID string) (*models.PersistedTheme, error) {
	query := `
		SELECT id, sequence, name, shop_domain, brand_name, vision, primary_color, secondary_color, background_color, remote_id, created_at, updated_at, deleted_at
		FROM themes
		WHERE remote_id = ? AND deleted_at IS NULL
	`

	theme, err := r.scanOne(r.db.QueryRow(query, remoteID))
	if err != nil {
		return nil, err
	}

	files, err := r.loadFiles(theme.ID())
	if err != nil {
		return nil, err
	}
	theme.SetFiles(files)

	return theme, nil
}

// Update modifies an existing theme and replaces its template files
func (r *ThemeRepository) Update(theme *models.PersistedTheme) error {
	if err := theme.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	theme.SetUpdatedAt(now)

	query := `
		UPDATE themes
		SET name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, theme.Name(), now, theme.ID())
	if err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrThemeNotFound, theme.ID())
	}

	return r.replaceFiles(theme.ID(), theme.Files())
}

// Delete soft-deletes a theme by ID
func (r *ThemeRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE themes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrThemeNotFound, id)
	}

	return nil
}

// List retrieves all themes matching the given criteria, excluding soft-deleted themes.
//
// Files are not loaded; call Get for a hydrated theme.
func (r *ThemeRepository) List(criteria map[string]any) ([]*models.PersistedTheme, error) {
	query := `
		SELECT id, sequence, name, shop_domain, brand_name, vision, primary_color, secondary_color, background_color, remote_id, created_at, updated_at, deleted_at
		FROM themes
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if shopDomain, ok := criteria["shop_domain"].(string); ok && shopDomain != "" {
		query += " AND shop_domain = ?"
		args = append(args, shopDomain)
	}

	if brandName, ok := criteria["brand_name"].(string); ok && brandName != "" {
		query += " AND brand_name = ?"
		args = append(args, brandName)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query themes: %w", err)
	}
	defer rows.Close()

	var themes []*models.PersistedTheme
	for rows.Next() {
		theme, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		themes = append(themes, theme)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return themes, nil
}

// replaceFiles swaps a theme's stored template files for the given set in one transaction
func (r *ThemeRepository) replaceFiles(themeID string, files models.TemplateFileSet) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM theme_files WHERE theme_id = ?", themeID); err != nil {
		return fmt.Errorf("failed to clear theme files: %w", err)
	}

	now := time.Now()
	for _, path := range files.SortedPaths() {
		_, err := tx.Exec(
			"INSERT INTO theme_files (id, theme_id, path, source, created_at) VALUES (?, ?, ?, ?, ?)",
			shared.GenerateID(), themeID, path, files[path], now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert theme file %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit theme files: %w", err)
	}

	return nil
}

// loadFiles reads a theme's template files into a [models.TemplateFileSet]
func (r *ThemeRepository) loadFiles(themeID string) (models.TemplateFileSet, error) {
	rows, err := r.db.Query("SELECT path, source FROM theme_files WHERE theme_id = ?", themeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query theme files: %w", err)
	}
	defer rows.Close()

	files := models.TemplateFileSet{}
	for rows.Next() {
		var path, source string
		if err := rows.Scan(&path, &source); err != nil {
			return nil, fmt.Errorf("failed to scan theme file: %w", err)
		}
		files[path] = source
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return files, nil
}

// scanOne scans a single row into a [models.PersistedTheme]
func (r *ThemeRepository) scanOne(row *sql.Row) (*models.PersistedTheme, error) {
	theme, err := scanTheme(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w", shared.ErrThemeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan theme: %w", err)
	}
	return theme, nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedTheme]
func (r *ThemeRepository) scanRow(rows *sql.Rows) (*models.PersistedTheme, error) {
	theme, err := scanTheme(rows.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan theme: %w", err)
	}
	return theme, nil
}

// scanTheme reads the shared column list through any Scan function
func scanTheme(scan func(dest ...any) error) (*models.PersistedTheme, error) {
	var (
		id              string
		sequence        int
		name            string
		shopDomain      string
		brandName       string
		vision          string
		primaryColor    string
		secondaryColor  string
		backgroundColor string
		remoteID        string
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       sql.NullTime
	)

	err := scan(&id, &sequence, &name, &shopDomain, &brandName, &vision, &primaryColor, &secondaryColor, &backgroundColor, &remoteID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	colors := models.ColorScheme{
		Primary:    primaryColor,
		Secondary:  secondaryColor,
		Background: backgroundColor,
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestorePersistedTheme(id, sequence, name, shopDomain, brandName, vision, colors, remoteID, createdAt, updatedAt, deleted), nil
}
