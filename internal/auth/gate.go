package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"themeforge/internal/shared"
)

// Navigator is the navigation capability the gate signals when an auth
// failure cannot be recovered. Implementations perform the login redirect;
// the gate clears the token store before invoking it, so re-entrant calls
// cannot loop.
type Navigator interface {
	RedirectToLogin()
}

// NavigatorFunc adapts a plain function to the [Navigator] interface.
type NavigatorFunc func()

func (f NavigatorFunc) RedirectToLogin() { f() }

// Gate wraps outbound requests so they carry a valid bearer credential,
// recovering transparently from one token-expiry failure per call.
type Gate struct {
	lifecycle *Lifecycle
	client    *http.Client
	nav       Navigator
	logger    *log.Logger
}

// NewGate creates a Gate. The navigator is a required dependency; client
// defaults to [http.DefaultClient].
func NewGate(lifecycle *Lifecycle, nav Navigator, client *http.Client, logger *log.Logger) *Gate {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Gate{
		lifecycle: lifecycle,
		client:    client,
		nav:       nav,
		logger:    logger,
	}
}

// apiError is the stable error envelope the Forge API returns on failures.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// tokenProblem reports whether an authorization failure names a token-class
// error, the only class the gate retries after a refresh.
func tokenProblem(code string) bool {
	switch code {
	case "token_expired", "token_invalid", "token_missing":
		return true
	}
	return false
}

// Do sends the request with a bearer credential attached.
//
// Contract:
//  1. No usable credential → the navigator is signaled and the call fails
//     with [shared.ErrNotAuthenticated]; no network request is made.
//  2. A 401 naming a token problem triggers exactly one refresh and one
//     retry. A failed refresh signals the navigator and fails with
//     [shared.ErrSessionExpired].
//  3. A 401 for any other reason signals the navigator and fails with
//     [shared.ErrAuthFailed]; no retry.
//  4. Every other response, success or failure, is returned unmodified.
//
// Requests with bodies must be built with [http.NewRequestWithContext] over a
// byte reader so the body can be re-issued on retry.
func (g *Gate) Do(req *http.Request) (*http.Response, error) {
	token, err := g.lifecycle.ValidAccessToken(req.Context())
	if err != nil {
		g.fail()
		return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	resp, err := g.send(req, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	code := drainErrorCode(resp)
	if !tokenProblem(code) {
		g.logger.Warnf("authorization rejected: %s", code)
		g.fail()
		return nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, code)
	}

	g.logger.Debug("access token rejected, refreshing once")
	newToken, err := g.lifecycle.Refresh(req.Context())
	if err != nil {
		g.fail()
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionExpired, err)
	}

	retry, err := g.send(req, newToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return retry, nil
}

// send issues a single attempt with the given bearer token, rewinding the
// body via GetBody when the request carries one.
func (g *Gate) send(req *http.Request, token string) (*http.Response, error) {
	attempt := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		attempt.Body = body
	}

	attempt.Header.Set("Authorization", "Bearer "+token)
	return g.client.Do(attempt)
}

// fail clears the store, then signals the navigator. Order matters: a
// re-entrant call observes an empty store and cannot loop back here with a
// stale credential.
func (g *Gate) fail() {
	g.lifecycle.Store().Clear()
	if g.nav != nil {
		g.nav.RedirectToLogin()
	}
}

// drainErrorCode reads and closes a failure response body and extracts the
// API error code, tolerating any malformed body.
func drainErrorCode(resp *http.Response) string {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return ""
	}

	var apiErr apiError
	if err := json.Unmarshal(bytes.TrimSpace(data), &apiErr); err != nil {
		return ""
	}

	return apiErr.Error.Code
}
