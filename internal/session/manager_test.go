package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bookworm-shop/storefront/pkg/bookworm"
	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/storage"
)

type stubAuthClient struct {
	loginResp   *bookworm.AuthResponse
	loginErr    error
	logoutErr   error
	logoutCalls int
	meResp      *bookworm.User
	meErr       error
}

func (c *stubAuthClient) Login(context.Context, string, string) (*bookworm.AuthResponse, error) {
	return c.loginResp, c.loginErr
}

func (c *stubAuthClient) Logout(context.Context, string) error {
	c.logoutCalls++
	return c.logoutErr
}

func (c *stubAuthClient) Me(context.Context, string) (*bookworm.User, error) {
	return c.meResp, c.meErr
}

type stubMerger struct {
	merged int
	err    error
	calls  int
}

func (m *stubMerger) MergeGuestCart(context.Context) (int, error) {
	m.calls++
	return m.merged, m.err
}

func authResponse() *bookworm.AuthResponse {
	return &bookworm.AuthResponse{
		AccessToken: "token-abc",
		TokenType:   "bearer",
		User:        bookworm.User{ID: 42, Email: "reader@example.com", FirstName: "Pat", LastName: "Reader"},
	}
}

func TestLoginPersistsSessionAndDrainsCart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	client := &stubAuthClient{loginResp: authResponse()}
	merger := &stubMerger{merged: 2}

	mgr, err := NewManager(store, client, merger, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	user, merged, err := mgr.Login(ctx, "reader@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 42 {
		t.Fatalf("user = %+v", user)
	}
	if merged != 2 {
		t.Fatalf("merged = %d, want 2", merged)
	}
	if merger.calls != 1 {
		t.Fatalf("merge calls = %d, want 1", merger.calls)
	}

	raw, ok, _ := store.Get(ctx, TokenKey)
	if !ok || string(raw) != "token-abc" {
		t.Fatalf("token = %q, ok = %v", raw, ok)
	}
	raw, ok, _ = store.Get(ctx, UserKey)
	if !ok {
		t.Fatal("profile not cached")
	}
	var cached bookworm.User
	if err := json.Unmarshal(raw, &cached); err != nil || cached.Email != "reader@example.com" {
		t.Fatalf("cached profile = %q, err = %v", raw, err)
	}
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	client := &stubAuthClient{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "wrong email or password")}
	merger := &stubMerger{}

	mgr, _ := NewManager(store, client, merger, nil)
	if _, _, err := mgr.Login(ctx, "reader@example.com", "nope"); err == nil {
		t.Fatal("expected login error")
	}
	if _, ok, _ := store.Get(ctx, TokenKey); ok {
		t.Fatal("token persisted despite failed login")
	}
	if merger.calls != 0 {
		t.Fatal("merge ran despite failed login")
	}
}

func TestLoginSurvivesDrainFailure(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	client := &stubAuthClient{loginResp: authResponse()}
	merger := &stubMerger{err: pkgerrors.New(pkgerrors.CodeDependency, "storage down")}

	mgr, _ := NewManager(store, client, merger, nil)
	user, merged, err := mgr.Login(ctx, "reader@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user == nil || merged != 0 {
		t.Fatalf("user = %v, merged = %d", user, merged)
	}
	if !mgr.IsAuthenticated(ctx) {
		t.Fatal("session should survive a failed drain")
	}
}

func TestLogoutClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	client := &stubAuthClient{
		loginResp: authResponse(),
		logoutErr: pkgerrors.New(pkgerrors.CodeDependency, "server error, please try again later"),
	}
	merger := &stubMerger{}

	mgr, _ := NewManager(store, client, merger, nil)
	if _, _, err := mgr.Login(ctx, "reader@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := mgr.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if client.logoutCalls != 1 {
		t.Fatalf("logout calls = %d, want 1", client.logoutCalls)
	}
	if mgr.IsAuthenticated(ctx) {
		t.Fatal("still authenticated after logout")
	}
	if _, ok, _ := store.Get(ctx, UserKey); ok {
		t.Fatal("profile survived logout")
	}
}

func TestLogoutWithoutSessionSkipsRemoteCall(t *testing.T) {
	ctx := context.Background()
	client := &stubAuthClient{}
	mgr, _ := NewManager(storage.NewMemory(), client, &stubMerger{}, nil)

	if err := mgr.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if client.logoutCalls != 0 {
		t.Fatalf("logout calls = %d, want 0", client.logoutCalls)
	}
}

func TestCurrentUserRefreshesMalformedCache(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	client := &stubAuthClient{meResp: &bookworm.User{ID: 42, Email: "reader@example.com"}}
	mgr, _ := NewManager(store, client, &stubMerger{}, nil)

	if err := store.Set(ctx, TokenKey, []byte("token-abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, UserKey, []byte("{broken")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	user, ok, err := mgr.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if !ok || user.ID != 42 {
		t.Fatalf("user = %+v, ok = %v", user, ok)
	}

	raw, ok, _ := store.Get(ctx, UserKey)
	if !ok {
		t.Fatal("refreshed profile not cached")
	}
	var cached bookworm.User
	if err := json.Unmarshal(raw, &cached); err != nil || cached.ID != 42 {
		t.Fatalf("cached profile = %q", raw)
	}
}

func TestCurrentUserAbsentWithoutToken(t *testing.T) {
	mgr, _ := NewManager(storage.NewMemory(), &stubAuthClient{}, &stubMerger{}, nil)

	user, ok, err := mgr.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if ok || user != nil {
		t.Fatalf("user = %v, ok = %v, want absent", user, ok)
	}
}
