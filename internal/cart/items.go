package cart

import (
	"github.com/shopspring/decimal"

	"github.com/bookworm-shop/storefront/pkg/prices"
)

const (
	// GuestCartKey is the single storage key shared by all anonymous sessions
	// on the device.
	GuestCartKey = "bookworm_guest_cart"
	// UserCartKeyPrefix scopes one persisted cart per authenticated subject.
	UserCartKeyPrefix = "bookworm_user_cart_"

	// MaxQuantityPerItem caps how many copies of one book a cart may hold.
	MaxQuantityPerItem = 8
)

// LineItem is one book's presence in a cart. Display fields and prices are
// snapshots frozen at add-time; they are never re-fetched.
type LineItem struct {
	ID            int              `json:"id"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	Image         string           `json:"image"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Quantity      int              `json:"quantity"`
}

// UnitPrice returns the effective per-copy price: the discount when one was
// captured, the original price otherwise.
func (li LineItem) UnitPrice() decimal.Decimal {
	if li.DiscountPrice != nil {
		return *li.DiscountPrice
	}
	return li.Price
}

// CatalogItem is the slice of a catalog detail record the cart snapshots when
// a book is added. Prices arrive raw and are normalized exactly once here.
type CatalogItem struct {
	ID            int
	Title         string
	AuthorName    string
	Cover         string
	OriginalPrice prices.Raw
	DiscountPrice prices.Raw
}

func (ci CatalogItem) lineItem(quantity int) LineItem {
	item := LineItem{
		ID:       ci.ID,
		Title:    ci.Title,
		Author:   ci.AuthorName,
		Image:    CoverImage(ci.Cover),
		Price:    ci.OriginalPrice.Decimal(),
		Quantity: quantity,
	}
	if ci.DiscountPrice.Present() {
		discount := ci.DiscountPrice.Decimal()
		item.DiscountPrice = &discount
	}
	return item
}

// CoverImage maps a catalog cover slug onto the served image path.
func CoverImage(cover string) string {
	if cover == "" {
		return "/covers/default.jpg"
	}
	return "/covers/" + cover + ".jpg"
}

func clampQuantity(quantity int) int {
	if quantity > MaxQuantityPerItem {
		return MaxQuantityPerItem
	}
	return quantity
}

func sumQuantities(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
