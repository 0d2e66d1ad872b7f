package identity

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookworm-shop/storefront/internal/cart"
	"github.com/bookworm-shop/storefront/internal/session"
	"github.com/bookworm-shop/storefront/pkg/storage"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestScopeGuestWithoutToken(t *testing.T) {
	store := storage.NewMemory()
	resolver, err := NewResolver(store, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	if scope := resolver.Scope(context.Background()); scope != cart.GuestCartKey {
		t.Fatalf("scope = %q, want guest", scope)
	}
}

func TestScopeUserFromStringSubject(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	resolver, _ := NewResolver(store, nil)

	token := signedToken(t, jwt.MapClaims{"sub": "42"})
	if err := store.Set(ctx, session.TokenKey, []byte(token)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	want := cart.UserCartKeyPrefix + "42"
	if scope := resolver.Scope(ctx); scope != want {
		t.Fatalf("scope = %q, want %q", scope, want)
	}
}

func TestScopeUserFromNumericSubject(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	resolver, _ := NewResolver(store, nil)

	token := signedToken(t, jwt.MapClaims{"sub": 42})
	if err := store.Set(ctx, session.TokenKey, []byte(token)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	want := cart.UserCartKeyPrefix + "42"
	if scope := resolver.Scope(ctx); scope != want {
		t.Fatalf("scope = %q, want %q", scope, want)
	}
}

func TestScopeFailsOpenToGuest(t *testing.T) {
	ctx := context.Background()
	cases := map[string][]byte{
		"garbage token":   []byte("not-a-jwt"),
		"empty token":     []byte(""),
		"missing subject": []byte(signedToken(t, jwt.MapClaims{"role": "customer"})),
		"empty subject":   []byte(signedToken(t, jwt.MapClaims{"sub": ""})),
	}

	for name, token := range cases {
		store := storage.NewMemory()
		resolver, _ := NewResolver(store, nil)
		if err := store.Set(ctx, session.TokenKey, token); err != nil {
			t.Fatalf("%s: Set: %v", name, err)
		}
		if scope := resolver.Scope(ctx); scope != cart.GuestCartKey {
			t.Fatalf("%s: scope = %q, want guest", name, scope)
		}
	}
}

func TestScopeIgnoresTokenExpiry(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	resolver, _ := NewResolver(store, nil)

	// Expired long ago. Scope resolution only namespaces local data, so the
	// subject still wins; the order service rejects the token when it matters.
	token := signedToken(t, jwt.MapClaims{"sub": "7", "exp": 1})
	if err := store.Set(ctx, session.TokenKey, []byte(token)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	want := cart.UserCartKeyPrefix + "7"
	if scope := resolver.Scope(ctx); scope != want {
		t.Fatalf("scope = %q, want %q", scope, want)
	}
}
