// Package auth implements the client-side token lifecycle for the Forge API.
//
// Three layers build on each other:
//
//  1. [Store] : an in-memory holder of the {access token, refresh token, shop domain}
//     triple with synchronous subscriber notification. A pure data holder; it
//     performs no validation.
//  2. [Lifecycle] : refresh orchestration. Guarantees at most one refresh call
//     in flight (joined via singleflight), heals the invalid
//     access-without-refresh state, and keeps the persisted session file in
//     sync with the in-memory triple.
//  3. [Gate] : wraps outbound requests with a bearer credential, transparently
//     refreshing and retrying once when the backend reports an expired token.
//     Terminal authentication failures clear the store and signal the injected
//     [Navigator] exactly once per call.
//
// The persisted session file (~/.themeforge/session.json) plays the role a
// browser's session cookies play for a web client: it is the externally
// observable session signal consulted by [Lifecycle.Initialize] and by the
// dashboard's coarse route guard.
package auth
