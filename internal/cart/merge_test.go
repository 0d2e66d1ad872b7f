package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func seedCart(t *testing.T, svc Service, scopes *stubScopes, scope string, lines []LineItem) {
	t.Helper()
	prev := scopes.scope
	scopes.scope = scope
	if err := svc.SaveItems(context.Background(), lines); err != nil {
		t.Fatalf("SaveItems(%s): %v", scope, err)
	}
	scopes.scope = prev
}

func line(id, quantity int) LineItem {
	return LineItem{ID: id, Title: "Book", Price: decimal.NewFromInt(10), Quantity: quantity}
}

func TestMergeGuestCartCombinesUnderCap(t *testing.T) {
	svc, scopes, notify, _ := newTestService(t)
	ctx := context.Background()
	userScope := UserCartKeyPrefix + "42"

	seedCart(t, svc, scopes, GuestCartKey, []LineItem{line(1, 3), line(2, 1)})
	seedCart(t, svc, scopes, userScope, []LineItem{line(1, 7)})
	notify.deltas = nil

	scopes.scope = userScope
	added, err := svc.MergeGuestCart(ctx)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}

	items, err := svc.Items(ctx)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ID != 1 || items[0].Quantity != MaxQuantityPerItem {
		t.Fatalf("line 1 = %+v, want quantity %d", items[0], MaxQuantityPerItem)
	}
	if items[1].ID != 2 || items[1].Quantity != 1 {
		t.Fatalf("line 2 = %+v, want quantity 1", items[1])
	}
	if notify.total() != 2 {
		t.Fatalf("notified total = %d, want 2", notify.total())
	}
}

func TestMergeGuestCartDrainsGuestKey(t *testing.T) {
	svc, scopes, _, store := newTestService(t)
	ctx := context.Background()

	seedCart(t, svc, scopes, GuestCartKey, []LineItem{line(1, 2)})
	scopes.scope = UserCartKeyPrefix + "42"

	if _, err := svc.MergeGuestCart(ctx); err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if _, ok, _ := store.Get(ctx, GuestCartKey); ok {
		t.Fatal("guest cart key survived the drain")
	}

	// A second merge finds nothing to do.
	added, err := svc.MergeGuestCart(ctx)
	if err != nil {
		t.Fatalf("second MergeGuestCart: %v", err)
	}
	if added != 0 {
		t.Fatalf("second merge added = %d, want 0", added)
	}
}

func TestMergeGuestCartNoOpWhileGuest(t *testing.T) {
	svc, scopes, _, store := newTestService(t)
	ctx := context.Background()

	seedCart(t, svc, scopes, GuestCartKey, []LineItem{line(1, 2)})
	scopes.scope = GuestCartKey

	added, err := svc.MergeGuestCart(ctx)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}
	if _, ok, _ := store.Get(ctx, GuestCartKey); !ok {
		t.Fatal("guest cart must survive while unauthenticated")
	}
}

func TestMergeGuestCartEmptyGuest(t *testing.T) {
	svc, scopes, _, _ := newTestService(t)
	ctx := context.Background()

	scopes.scope = UserCartKeyPrefix + "42"
	added, err := svc.MergeGuestCart(ctx)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}
}

func TestMergeGuestCartSkipsMalformedGuestData(t *testing.T) {
	svc, scopes, _, store := newTestService(t)
	ctx := context.Background()

	if err := store.Set(ctx, GuestCartKey, []byte("{not json")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	scopes.scope = UserCartKeyPrefix + "42"

	added, err := svc.MergeGuestCart(ctx)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}
	// Malformed data is left in place for inspection, never deleted.
	if _, ok, _ := store.Get(ctx, GuestCartKey); !ok {
		t.Fatal("malformed guest data was deleted")
	}
}

func TestMergeGuestCartGuestOnlyLinesCarryWhole(t *testing.T) {
	svc, scopes, _, store := newTestService(t)
	ctx := context.Background()
	userScope := UserCartKeyPrefix + "7"

	guest := []LineItem{line(3, 12)} // above the cap in storage, clamps on merge
	raw, _ := json.Marshal(guest)
	if err := store.Set(ctx, GuestCartKey, raw); err != nil {
		t.Fatalf("Set: %v", err)
	}

	scopes.scope = userScope
	added, err := svc.MergeGuestCart(ctx)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if added != MaxQuantityPerItem {
		t.Fatalf("added = %d, want %d", added, MaxQuantityPerItem)
	}
	items, err := svc.Items(ctx)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != MaxQuantityPerItem {
		t.Fatalf("items = %+v", items)
	}
}
