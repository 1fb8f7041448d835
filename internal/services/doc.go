// Package services implements the HTTP client for the Forge theme generation
// backend.
//
// # Service Interface
//
// [Service] is the abstraction consumed by commands, tasks, and the dashboard.
// [ForgeService] is its production implementation; tests substitute doubles.
//
// # Two Transport Paths
//
// Theme operations travel through an [auth.Gate], which attaches the bearer
// credential and recovers from a single token expiry per call. Session
// operations (refresh, logout, status, code exchange) travel through a plain
// HTTP client, since they either carry no credential or carry the refresh
// token in the request body — routing them through the gate would recurse.
//
// [ForgeService] therefore implements [auth.SessionAPI], closing the loop:
// the lifecycle refreshes through the service, and the service's gated calls
// refresh through the lifecycle.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no usable credential, login required
//   - [shared.ErrSessionExpired] : refresh token rejected, login required
//   - [shared.ErrAPIRequest] : HTTP transport failure
//   - [shared.ErrThemeNotFound] : theme ID unknown to the backend
//   - [shared.ErrGenerationFailed] : backend could not produce a theme
//
// # API Mappings
//
// Wire types (forgeTheme, forgeSession) are private; responses convert to
// [models.Theme] and [auth.TokenState] at the package boundary.
package services
