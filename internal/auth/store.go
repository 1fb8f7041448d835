package auth

import "sync"

// TokenState is the full credential triple held by the client.
//
// The triple is always assigned as a unit; partial writes are not possible.
type TokenState struct {
	AccessToken  string
	RefreshToken string
	ShopDomain   string
}

// Empty reports whether no credential of any kind is held.
func (s TokenState) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

// Listener receives the full token triple on every store mutation.
type Listener func(TokenState)

// Store holds the current token triple and notifies subscribers on change.
//
// Reads return a consistent snapshot. Listeners are invoked synchronously on
// every SetTokens/Clear call, outside the store lock so they may read back.
type Store struct {
	mu        sync.Mutex
	state     TokenState
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty token store.
func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// SetTokens unconditionally replaces the triple and notifies all subscribers.
//
// No validation is performed here; consistency rules belong to [Lifecycle].
func (s *Store) SetTokens(access, refresh, shopDomain string) {
	s.mu.Lock()
	s.state = TokenState{AccessToken: access, RefreshToken: refresh, ShopDomain: shopDomain}
	state, listeners := s.state, s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// Clear resets the triple to empty and notifies all subscribers.
func (s *Store) Clear() {
	s.SetTokens("", "", "")
}

// State returns a snapshot of the current triple.
func (s *Store) State() TokenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccessToken returns the current access token, or "" when absent.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

// RefreshToken returns the current refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RefreshToken
}

// ShopDomain returns the shop domain associated with the session.
func (s *Store) ShopDomain() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ShopDomain
}

// Subscribe registers a listener and returns an unsubscribe func.
//
// Listeners see every future mutation; past events are not replayed.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners copies the listener set; callers must hold s.mu.
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
