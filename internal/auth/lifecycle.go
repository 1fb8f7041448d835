package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"themeforge/internal/shared"
)

// State is the lifecycle's view of the current authentication status.
type State int

const (
	Unauthenticated State = iota // no access token
	Authenticated                // access token present, assumed valid until a request says otherwise
	RefreshPending               // exactly one refresh call outstanding
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case RefreshPending:
		return "refresh_pending"
	default:
		return "unauthenticated"
	}
}

// SessionAPI is the backend surface the lifecycle needs: a refresh exchange
// and a best-effort logout notification. Implemented by services.ForgeService.
type SessionAPI interface {
	// RefreshSession exchanges a refresh token for a new token triple.
	RefreshSession(ctx context.Context, refreshToken string) (TokenState, error)

	// LogoutSession invalidates the server-side session for a shop domain.
	LogoutSession(ctx context.Context, shopDomain string) error
}

// Lifecycle keeps the token triple consistent: it mediates refresh, detects
// the invalid access-without-refresh state, and mirrors every change into the
// persisted session.
type Lifecycle struct {
	store   *Store
	session SessionStore
	api     SessionAPI
	logger  *log.Logger

	group singleflight.Group

	mu    sync.Mutex
	state State
}

// NewLifecycle creates a Lifecycle over the given store, session store, and backend.
func NewLifecycle(store *Store, session SessionStore, api SessionAPI, logger *log.Logger) *Lifecycle {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Lifecycle{
		store:   store,
		session: session,
		api:     api,
		logger:  logger,
	}
}

// Store exposes the underlying token store.
func (l *Lifecycle) Store() *Store {
	return l.store
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Lifecycle) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Initialize reconciles the in-memory store with the persisted session.
//
// It never fails: a broken or absent session resolves to Unauthenticated, the
// invalid access-without-refresh state is fully cleared, and a refresh-capable
// session with no access token triggers exactly one proactive refresh.
func (l *Lifecycle) Initialize(ctx context.Context) State {
	session, err := l.session.Load()
	if err != nil {
		l.logger.Warnf("failed to load persisted session: %v", err)
		l.clearAll()
		l.setState(Unauthenticated)
		return Unauthenticated
	}

	switch {
	case session.AccessToken != "" && session.RefreshToken == "":
		// Must never persist: treat as unauthenticated and heal.
		l.logger.Warn("invalid token state detected, clearing session")
		l.clearAll()
		l.setState(Unauthenticated)

	case session.AccessToken != "":
		l.store.SetTokens(session.AccessToken, session.RefreshToken, session.ShopDomain)
		l.setState(Authenticated)

	case session.RefreshToken != "":
		l.store.SetTokens("", session.RefreshToken, session.ShopDomain)
		if _, err := l.Refresh(ctx); err != nil {
			l.logger.Warnf("proactive refresh failed: %v", err)
			l.setState(Unauthenticated)
		} else {
			l.setState(Authenticated)
		}

	default:
		l.store.Clear()
		l.setState(Unauthenticated)
	}

	return l.State()
}

// ValidAccessToken returns the current access token, refreshing first when
// only a refresh token is held. Fails with [shared.ErrNoCredentials] when no
// usable credential exists.
func (l *Lifecycle) ValidAccessToken(ctx context.Context) (string, error) {
	if token := l.store.AccessToken(); token != "" {
		return token, nil
	}

	if l.store.RefreshToken() == "" {
		return "", shared.ErrNoCredentials
	}

	return l.Refresh(ctx)
}

// Refresh performs a token refresh, joining any refresh already in flight.
//
// Exactly one network call services all concurrent callers; every joined
// caller receives the same new access token or the same error. A failed
// refresh always leaves the system fully cleared, never partially populated.
func (l *Lifecycle) Refresh(ctx context.Context) (string, error) {
	token, err, _ := l.group.Do("refresh", func() (any, error) {
		refreshToken := l.store.RefreshToken()
		if refreshToken == "" {
			return "", shared.ErrNoRefreshToken
		}

		l.setState(RefreshPending)
		l.logger.Debug("refreshing access token")

		state, err := l.api.RefreshSession(ctx, refreshToken)
		if err != nil {
			l.clearAll()
			l.setState(Unauthenticated)
			return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
		}

		l.store.SetTokens(state.AccessToken, state.RefreshToken, state.ShopDomain)
		if err := l.session.Save(Session{
			AccessToken:  state.AccessToken,
			RefreshToken: state.RefreshToken,
			ShopDomain:   state.ShopDomain,
		}); err != nil {
			l.logger.Warnf("failed to persist refreshed session: %v", err)
		}

		l.setState(Authenticated)
		return state.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

// HasValidTokenState reports false only for the invalid combination of an
// access token without a refresh token. All other combinations, including
// fully empty, are valid.
func (l *Lifecycle) HasValidTokenState() bool {
	state := l.store.State()
	return !(state.AccessToken != "" && state.RefreshToken == "")
}

// SetAuthenticated installs a freshly exchanged token triple and persists it.
// Used by the OAuth login flow after a successful code exchange.
func (l *Lifecycle) SetAuthenticated(access, refresh, shopDomain string) error {
	l.store.SetTokens(access, refresh, shopDomain)
	l.setState(Authenticated)
	return l.session.Save(Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ShopDomain:   shopDomain,
	})
}

// Logout notifies the backend best-effort, then unconditionally clears all
// local state. A failed server notification is logged, never propagated.
func (l *Lifecycle) Logout(ctx context.Context) {
	if domain := l.store.ShopDomain(); domain != "" {
		if err := l.api.LogoutSession(ctx, domain); err != nil {
			l.logger.Warnf("logout notification failed: %v", err)
		}
	}

	l.clearAll()
	l.setState(Unauthenticated)
}

// clearAll wipes both the in-memory store and the persisted session.
func (l *Lifecycle) clearAll() {
	l.store.Clear()
	if err := l.session.Clear(); err != nil {
		l.logger.Warnf("failed to clear persisted session: %v", err)
	}
}
