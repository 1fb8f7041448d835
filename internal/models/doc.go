// Package models defines domain entities and persistence interfaces for the themeforge client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs shaping Forge API data
//   - [Theme] : A generated theme with its template file set
//   - [TemplateFileSet] : Relative file path → Liquid source mapping
//   - [BrandProfile] / [ColorScheme] / [Product] : Wizard inputs sent to the generation backend
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedTheme] : Locally cached generated themes with brand metadata
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
