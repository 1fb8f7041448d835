package server

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"

	"themeforge/internal/auth"
	"themeforge/internal/shared"
)

// GuardState is the fine guard's decision state for the current navigation.
type GuardState int

const (
	Checking    GuardState = iota // validation in progress
	Allowed                       // navigation may proceed
	Redirecting                   // navigation is being sent to login
)

func (s GuardState) String() string {
	switch s {
	case Allowed:
		return "allowed"
	case Redirecting:
		return "redirecting"
	default:
		return "checking"
	}
}

// CoarseGuard is the cheap outer gate: it only asks whether a persisted
// session exists, never whether its tokens are valid. Requests without one
// are redirected to the login page before any handler runs.
func CoarseGuard(session auth.SessionStore, loginPath string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !session.Present() {
				http.Redirect(w, r, loginRedirect(loginPath, r.URL.Path), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FineGuard performs full token validation for protected pages, refreshing
// at most once per navigation. A navigation is a request for a new path:
// retrying the same path does not earn a second refresh attempt, while
// moving to a different path resets the budget.
type FineGuard struct {
	lifecycle *auth.Lifecycle
	loginPath string
	logger    *log.Logger

	mu           sync.Mutex
	lastPath     string
	refreshTried bool
	state        GuardState
}

// NewFineGuard creates a FineGuard redirecting failed validations to loginPath.
func NewFineGuard(lifecycle *auth.Lifecycle, loginPath string, logger *log.Logger) *FineGuard {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FineGuard{
		lifecycle: lifecycle,
		loginPath: loginPath,
		logger:    logger,
	}
}

// State returns the guard's decision for the most recent navigation.
func (g *FineGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Middleware wraps protected handlers with the fine validation step.
func (g *FineGuard) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.allow(r) {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, loginRedirect(g.loginPath, r.URL.Path), http.StatusSeeOther)
		})
	}
}

// loginRedirect carries the requested path so login can return to it.
func loginRedirect(loginPath, next string) string {
	return loginPath + "?next=" + url.QueryEscape(next)
}

// allow runs the validation sequence for one request and reports the verdict.
func (g *FineGuard) allow(r *http.Request) bool {
	g.mu.Lock()
	if r.URL.Path != g.lastPath {
		g.lastPath = r.URL.Path
		g.refreshTried = false
	}
	g.state = Checking
	canRefresh := !g.refreshTried
	g.mu.Unlock()

	store := g.lifecycle.Store()

	// The invalid access-without-refresh combination never validates.
	if !g.lifecycle.HasValidTokenState() {
		g.logger.Warn("invalid token state at guard, clearing")
		store.Clear()
		g.setState(Redirecting)
		return false
	}

	if store.AccessToken() != "" {
		g.setState(Allowed)
		return true
	}

	if store.RefreshToken() == "" || !canRefresh {
		g.setState(Redirecting)
		return false
	}

	g.mu.Lock()
	g.refreshTried = true
	g.mu.Unlock()

	if _, err := g.lifecycle.Refresh(r.Context()); err != nil {
		g.logger.Warnf("guard refresh failed: %v", err)
		g.setState(Redirecting)
		return false
	}

	g.setState(Allowed)
	return true
}

func (g *FineGuard) setState(s GuardState) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}
