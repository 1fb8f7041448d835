package auth

import "testing"

func TestStore(t *testing.T) {
	t.Run("SetTokens Replaces Triple", func(t *testing.T) {
		store := NewStore()
		store.SetTokens("access", "refresh", "shop.myshopify.com")

		if store.AccessToken() != "access" {
			t.Errorf("expected access token, got %q", store.AccessToken())
		}
		if store.RefreshToken() != "refresh" {
			t.Errorf("expected refresh token, got %q", store.RefreshToken())
		}
		if store.ShopDomain() != "shop.myshopify.com" {
			t.Errorf("expected shop domain, got %q", store.ShopDomain())
		}

		store.SetTokens("access2", "", "")
		state := store.State()
		if state.AccessToken != "access2" || state.RefreshToken != "" || state.ShopDomain != "" {
			t.Errorf("expected full replacement, got %+v", state)
		}
	})

	t.Run("Clear Notifies With Empty Triple", func(t *testing.T) {
		store := NewStore()
		store.SetTokens("a", "r", "s")

		var got TokenState
		notified := 0
		store.Subscribe(func(state TokenState) {
			got = state
			notified++
		})

		store.Clear()
		if notified != 1 {
			t.Fatalf("expected 1 notification, got %d", notified)
		}
		if !got.Empty() || got.ShopDomain != "" {
			t.Errorf("expected empty triple, got %+v", got)
		}
	})

	t.Run("Subscribe And Unsubscribe", func(t *testing.T) {
		store := NewStore()

		count := 0
		unsubscribe := store.Subscribe(func(TokenState) { count++ })

		store.SetTokens("a", "r", "s")
		store.SetTokens("b", "r", "s")
		if count != 2 {
			t.Errorf("expected 2 notifications, got %d", count)
		}

		unsubscribe()
		store.Clear()
		if count != 2 {
			t.Errorf("expected no notification after unsubscribe, got %d", count)
		}
	})

	t.Run("No Replay For Late Subscribers", func(t *testing.T) {
		store := NewStore()
		store.SetTokens("a", "r", "s")

		count := 0
		store.Subscribe(func(TokenState) { count++ })
		if count != 0 {
			t.Errorf("expected no replay on subscribe, got %d notifications", count)
		}
	})

	t.Run("Listener May Read Store", func(t *testing.T) {
		store := NewStore()

		var seen string
		store.Subscribe(func(TokenState) {
			seen = store.AccessToken()
		})

		store.SetTokens("live", "r", "s")
		if seen != "live" {
			t.Errorf("listener should observe the new state, got %q", seen)
		}
	})
}
