// Package repositories implements SQLite persistence for generated themes.
//
// [ThemeRepository] handles CRUD operations with atomic sequence generation for human-readable ordering.
// It supports soft deletes via deleted_at timestamps and excludes deleted records from queries by default.
//
// Theme metadata lives in the themes table; template files live in theme_files,
// one row per path, replaced wholesale on update. [ThemeRepository.Get] loads
// both and returns a fully hydrated [models.PersistedTheme].
//
// Sequence numbers provide stable, human-readable ordering (e.g., theme #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments the per-table sequence counter in a dedicated sequence table.
package repositories
