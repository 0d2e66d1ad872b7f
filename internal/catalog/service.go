// Package catalog adapts the raw backend book shapes into the display and
// cart shapes the rest of the gateway works with.
package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bookworm-shop/storefront/internal/cart"
	"github.com/bookworm-shop/storefront/pkg/bookworm"
	"github.com/bookworm-shop/storefront/pkg/prices"
)

// Backend is the slice of the backend client the catalog needs.
type Backend interface {
	ListBooks(ctx context.Context, params bookworm.ListBooksParams) (*bookworm.BookPage, error)
	BookDetail(ctx context.Context, bookID int) (*bookworm.BookDetail, error)
	BooksOnSale(ctx context.Context, limit int) ([]bookworm.Book, error)
	BooksRecommended(ctx context.Context, limit int) ([]bookworm.Book, error)
	BooksPopular(ctx context.Context, limit int) ([]bookworm.Book, error)
}

// DisplayBook is a normalized, render-ready book record.
type DisplayBook struct {
	ID            int              `json:"id"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	Image         string           `json:"image"`
	Summary       string           `json:"summary,omitempty"`
	Category      string           `json:"category,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Rating        float64          `json:"rating"`
	ReviewsCount  int              `json:"reviewsCount"`
}

// Page is one page of display books plus the backend's paging echo.
type Page struct {
	Items []DisplayBook `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

type Service struct {
	backend Backend
}

func NewService(backend Backend) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend client required")
	}
	return &Service{backend: backend}, nil
}

// List fetches a filtered catalog page.
func (s *Service) List(ctx context.Context, params bookworm.ListBooksParams) (*Page, error) {
	page, err := s.backend.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}
	out := &Page{
		Items: make([]DisplayBook, 0, len(page.Items)),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
	}
	for _, b := range page.Items {
		out.Items = append(out.Items, displayFromListing(b, b.DiscountPrice))
	}
	return out, nil
}

// Detail fetches one render-ready book.
func (s *Service) Detail(ctx context.Context, bookID int) (*DisplayBook, error) {
	detail, err := s.backend.BookDetail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	book := DisplayBook{
		ID:           detail.ID,
		Title:        detail.Title,
		Author:       authorName(detail.Author.Name, detail.Author.ID),
		Image:        cart.CoverImage(detail.Cover),
		Summary:      detail.Summary,
		Category:     detail.Category.Name,
		Price:        detail.OriginalPrice.Decimal(),
		Rating:       detail.AvgRating,
		ReviewsCount: detail.ReviewsCount,
	}
	applyDiscount(&book, detail.DiscountPrice)
	return &book, nil
}

// OnSale fetches the on-sale rail. The backend carries the sale amount in the
// discount price field for this rail.
func (s *Service) OnSale(ctx context.Context, limit int) ([]DisplayBook, error) {
	books, err := s.backend.BooksOnSale(ctx, limit)
	if err != nil {
		return nil, err
	}
	return displayRail(books, func(b bookworm.Book) prices.Raw { return b.DiscountPrice }), nil
}

// Recommended fetches the recommended rail. Featured rails report the
// effective amount in final_price, so that field drives the discount.
func (s *Service) Recommended(ctx context.Context, limit int) ([]DisplayBook, error) {
	books, err := s.backend.BooksRecommended(ctx, limit)
	if err != nil {
		return nil, err
	}
	return displayRail(books, func(b bookworm.Book) prices.Raw { return b.FinalPrice }), nil
}

// Popular fetches the popular rail, priced like the recommended one.
func (s *Service) Popular(ctx context.Context, limit int) ([]DisplayBook, error) {
	books, err := s.backend.BooksPopular(ctx, limit)
	if err != nil {
		return nil, err
	}
	return displayRail(books, func(b bookworm.Book) prices.Raw { return b.FinalPrice }), nil
}

// ToCartItem fetches the book and snapshots the fields the cart persists.
func (s *Service) ToCartItem(ctx context.Context, bookID int) (cart.CatalogItem, error) {
	detail, err := s.backend.BookDetail(ctx, bookID)
	if err != nil {
		return cart.CatalogItem{}, err
	}
	return cart.CatalogItem{
		ID:            detail.ID,
		Title:         detail.Title,
		AuthorName:    authorName(detail.Author.Name, detail.Author.ID),
		Cover:         detail.Cover,
		OriginalPrice: detail.OriginalPrice,
		DiscountPrice: detail.DiscountPrice,
	}, nil
}

func displayRail(books []bookworm.Book, discount func(bookworm.Book) prices.Raw) []DisplayBook {
	out := make([]DisplayBook, 0, len(books))
	for _, b := range books {
		out = append(out, displayFromListing(b, discount(b)))
	}
	return out
}

func displayFromListing(b bookworm.Book, discount prices.Raw) DisplayBook {
	book := DisplayBook{
		ID:           b.ID,
		Title:        b.Title,
		Author:       authorName(b.AuthorName, b.AuthorID),
		Image:        cart.CoverImage(b.Cover),
		Summary:      b.Summary,
		Price:        b.OriginalPrice.Decimal(),
		Rating:       b.AvgRating,
		ReviewsCount: b.ReviewsCount,
	}
	applyDiscount(&book, discount)
	return book
}

func applyDiscount(book *DisplayBook, raw prices.Raw) {
	if !raw.Present() {
		return
	}
	d := raw.Decimal()
	book.DiscountPrice = &d
}

func authorName(name string, id int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("Author #%d", id)
}
