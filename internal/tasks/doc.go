// Package tasks orchestrates theme generation and export with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Generate] : Full generation run
//     - Submits the structured request to the Forge backend
//     - Renders a local HTML preview of the returned template files
//     - Caches the theme in the local database
//     - Returns the theme, its preview, and timing data
//
//  2. [Engine.BulkExport] : Export cached themes to disk
//     - Loads each theme from the local database
//     - Writes each as an uploadable theme directory via the formatter
//     - Respects a rate limit and bounded worker pool
//     - Writes a manifest summarizing successes and failures
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [ThemeEngine] implements [Engine] with dependencies on:
//   - [services.Service] : Forge API client
//   - [ThemeStore] : local persistence (repositories.ThemeRepository)
package tasks
