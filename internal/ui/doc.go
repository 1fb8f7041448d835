// Package ui implements the interactive generation wizard using bubbletea's Elm architecture.
//
// The wizard walks a merchant through a theme generation request:
//  1. [BrandView] : Brand name, tagline, industry, and description
//  2. [ColorsView] : Primary, secondary, and background hex colors with live swatches
//  3. [VisionView] : Free-form description of the desired look and feel
//  4. [ProductsView] : Optional products to feature in the generated storefront
//  5. [ReviewView] : Confirm the assembled request
//  6. [GenerateView] : Monitor real-time progress updates
//  7. [ResultView] : Display the generated theme and its local cache ID
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ThemeEngine, providing non-blocking
// status reporting during generation. Edits are autosaved as a draft through a
// debounced [DraftSaver], so an interrupted session can be resumed with [Model.SeedRequest].
//
// Keyboard navigation uses tab/shift+tab between fields, enter to advance, esc to
// step back, with contextual help displayed via charmbracelet/bubbles/help.
package ui
