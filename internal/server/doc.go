// Package server provides HTTP routing, middleware, route guards, and OAuth
// handling for the CLI and the local dashboard.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Route Guards
//
// Protected dashboard pages sit behind two layers:
//
//   - [CoarseGuard] : cheap outer gate that only checks whether a persisted
//     session exists. It never validates tokens, so it cannot flicker a
//     protected page for a user whose tokens turn out to be dead.
//   - [FineGuard] : full token validation through the auth lifecycle, with
//     at most one refresh attempt per navigation. Moving to a different
//     path resets the refresh budget; retrying the same path does not.
//
// A request passes the coarse guard, then the fine guard, then reaches the
// handler. Either guard failing redirects to the login page.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// When the user runs the login command, a temporary HTTP server starts on
// localhost, handles the callback, and shuts down after receiving the token.
//
// # Dashboard
//
// [Dashboard] serves the theme browser: a list of cached themes, a detail
// page per theme, and an iframe-hosted preview rendered by the preview
// package. It implements [Handler] and registers its own protected and
// public routes.
package server
