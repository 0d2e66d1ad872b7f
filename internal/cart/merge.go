package cart

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
)

// MergeGuestCart drains the guest cart into the authenticated user's cart.
// Quantities for lines present on both sides combine under the per-item cap;
// guest-only lines carry over whole. The return value is the total quantity
// actually credited to the user cart. A no-op when the active scope is still
// the guest cart or the guest cart holds nothing.
func (s *service) MergeGuestCart(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.scopes.Scope(ctx)
	if scope == GuestCartKey {
		return 0, nil
	}

	raw, ok, err := s.store.Get(ctx, GuestCartKey)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading guest cart")
	}
	if !ok {
		return 0, nil
	}
	var guest []LineItem
	if err := json.Unmarshal(raw, &guest); err != nil {
		if s.logger != nil {
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "skipping merge of malformed guest cart")
		}
		return 0, nil
	}
	if len(guest) == 0 {
		return 0, nil
	}

	items, err := s.read(ctx, scope)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, line := range guest {
		merged := false
		for i := range items {
			if items[i].ID != line.ID {
				continue
			}
			next := clampQuantity(items[i].Quantity + line.Quantity)
			added += next - items[i].Quantity
			items[i].Quantity = next
			merged = true
			break
		}
		if !merged {
			line.Quantity = clampQuantity(line.Quantity)
			added += line.Quantity
			items = append(items, line)
		}
	}

	if err := s.write(ctx, scope, items); err != nil {
		return 0, err
	}
	if err := s.store.Delete(ctx, GuestCartKey); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "draining guest cart")
	}
	s.broadcast(added)
	return added, nil
}
