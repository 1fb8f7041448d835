// package models defines the data model for the themeforge client
package models

import (
	"fmt"
	"sort"
	"time"
)

// Model defines the base interface for all persistent models in the themeforge client.
// Implementations include PersistedTheme.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// TemplateFileSet maps relative template file paths (e.g. "sections/hero.liquid")
// to Liquid source text. Keys are unique; no ordering is implied.
type TemplateFileSet map[string]string

// SortedPaths returns the file paths in lexical order for deterministic iteration.
func (fs TemplateFileSet) SortedPaths() []string {
	paths := make([]string, 0, len(fs))
	for p := range fs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Theme represents a generated theme returned by the Forge API.
type Theme struct {
	ID         string
	Name       string
	ShopDomain string
	Files      TemplateFileSet
}

// BrandProfile holds the brand information collected by the generation wizard.
type BrandProfile struct {
	Name     string
	Tagline  string
	Industry string
	About    string
}

// ColorScheme holds the three brand colors applied to generated themes and previews.
type ColorScheme struct {
	Primary    string
	Secondary  string
	Background string
}

// Product describes an optional product included in a generation request.
type Product struct {
	Title       string
	Description string
	Price       string
	ImageURL    string
}

// GenerationRequest is the structured payload sent to the generation backend.
type GenerationRequest struct {
	Brand           BrandProfile
	Colors          ColorScheme
	Vision          string
	Products        []Product
	ReferenceImages []string
}

// PersistedTheme is a database-backed generated theme with brand metadata.
type PersistedTheme struct {
	id         string
	sequence   int
	name       string
	shopDomain string
	brandName  string
	vision     string
	colors     ColorScheme
	remoteID   string
	files      TemplateFileSet
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewPersistedTheme creates a PersistedTheme from a Theme DTO and its generation inputs.
//
// The ID is assigned by the repository on Create.
func NewPersistedTheme(theme Theme, req GenerationRequest) *PersistedTheme {
	now := time.Now()
	return &PersistedTheme{
		name:       theme.Name,
		shopDomain: theme.ShopDomain,
		brandName:  req.Brand.Name,
		vision:     req.Vision,
		colors:     req.Colors,
		remoteID:   theme.ID,
		files:      theme.Files,
		createdAt:  now,
		updatedAt:  now,
	}
}

// RestorePersistedTheme reconstructs a PersistedTheme from stored column values.
func RestorePersistedTheme(id string, sequence int, name, shopDomain, brandName, vision string, colors ColorScheme, remoteID string, createdAt, updatedAt time.Time, deletedAt *time.Time) *PersistedTheme {
	return &PersistedTheme{
		id:         id,
		sequence:   sequence,
		name:       name,
		shopDomain: shopDomain,
		brandName:  brandName,
		vision:     vision,
		colors:     colors,
		remoteID:   remoteID,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		deletedAt:  deletedAt,
	}
}

func (t *PersistedTheme) ID() string            { return t.id }
func (t *PersistedTheme) Sequence() int         { return t.sequence }
func (t *PersistedTheme) Name() string          { return t.name }
func (t *PersistedTheme) ShopDomain() string    { return t.shopDomain }
func (t *PersistedTheme) BrandName() string     { return t.brandName }
func (t *PersistedTheme) Vision() string        { return t.vision }
func (t *PersistedTheme) Colors() ColorScheme   { return t.colors }
func (t *PersistedTheme) RemoteID() string      { return t.remoteID }
func (t *PersistedTheme) Files() TemplateFileSet { return t.files }
func (t *PersistedTheme) CreatedAt() time.Time  { return t.createdAt }
func (t *PersistedTheme) UpdatedAt() time.Time  { return t.updatedAt }
func (t *PersistedTheme) DeletedAt() *time.Time { return t.deletedAt }

func (t *PersistedTheme) SetID(id string)             { t.id = id }
func (t *PersistedTheme) SetSequence(seq int)         { t.sequence = seq }
func (t *PersistedTheme) SetName(name string)         { t.name = name }
func (t *PersistedTheme) SetFiles(fs TemplateFileSet) { t.files = fs }
func (t *PersistedTheme) SetUpdatedAt(ts time.Time)   { t.updatedAt = ts }

// Validate checks that the theme has the fields required for persistence.
func (t *PersistedTheme) Validate() error {
	if t.id == "" {
		return fmt.Errorf("theme id is required")
	}
	if t.name == "" {
		return fmt.Errorf("theme name is required")
	}
	if t.shopDomain == "" {
		return fmt.Errorf("shop domain is required")
	}
	return nil
}
