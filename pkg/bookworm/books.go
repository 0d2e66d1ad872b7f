package bookworm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bookworm-shop/storefront/pkg/prices"
)

type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Book is the listing-shape record returned by the catalog endpoints.
type Book struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary"`
	OriginalPrice prices.Raw `json:"original_price"`
	DiscountPrice prices.Raw `json:"discount_price"`
	FinalPrice    prices.Raw `json:"final_price"`
	Cover         string     `json:"cover"`
	CategoryID    int        `json:"category_id"`
	AuthorID      int        `json:"author_id"`
	AuthorName    string     `json:"author_name"`
	ReviewsCount  int        `json:"reviews_count"`
	AvgRating     float64    `json:"avg_rating"`
}

type BookPage struct {
	Items []Book `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// BookDetail is the richer shape served by the detail endpoint. Price fields
// arrive as numbers or currency-formatted strings depending on backend
// version, so they are normalized at the boundary.
type BookDetail struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary"`
	Cover         string     `json:"cover"`
	OriginalPrice prices.Raw `json:"original_price"`
	DiscountPrice prices.Raw `json:"discount_price"`
	FinalPrice    prices.Raw `json:"final_price"`
	Author        Author     `json:"author"`
	Category      Category   `json:"category"`
	ReviewsCount  int        `json:"reviews_count"`
	AvgRating     float64    `json:"avg_rating"`
}

type ListBooksParams struct {
	CategoryID int
	AuthorID   int
	MinRating  float64
	SortBy     string
	Page       int
	Size       int
}

func (p ListBooksParams) query() url.Values {
	q := url.Values{}
	if p.CategoryID > 0 {
		q.Set("category_id", strconv.Itoa(p.CategoryID))
	}
	if p.AuthorID > 0 {
		q.Set("author_id", strconv.Itoa(p.AuthorID))
	}
	if p.MinRating > 0 {
		q.Set("min_rating", strconv.FormatFloat(p.MinRating, 'f', -1, 64))
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	return q
}

// ListBooks fetches a filtered, sorted, paginated catalog page.
func (c *Client) ListBooks(ctx context.Context, params ListBooksParams) (*BookPage, error) {
	var page BookPage
	err := c.do(ctx, request{method: http.MethodGet, path: "/books/", query: params.query()}, &page)
	if err != nil {
		return nil, mapError(err)
	}
	return &page, nil
}

// BookDetail fetches one book by catalog id.
func (c *Client) BookDetail(ctx context.Context, bookID int) (*BookDetail, error) {
	var detail BookDetail
	err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/books/%d", bookID)}, &detail)
	if err != nil {
		return nil, mapError(err)
	}
	return &detail, nil
}

// BooksOnSale fetches the on-sale rail.
func (c *Client) BooksOnSale(ctx context.Context, limit int) ([]Book, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var books []Book
	err := c.do(ctx, request{method: http.MethodGet, path: "/books/on-sale", query: q}, &books)
	if err != nil {
		return nil, mapError(err)
	}
	return books, nil
}

// BooksRecommended fetches the recommended rail.
func (c *Client) BooksRecommended(ctx context.Context, limit int) ([]Book, error) {
	return c.featured(ctx, "recommended", limit)
}

// BooksPopular fetches the popular rail.
func (c *Client) BooksPopular(ctx context.Context, limit int) ([]Book, error) {
	return c.featured(ctx, "popular", limit)
}

func (c *Client) featured(ctx context.Context, kind string, limit int) ([]Book, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var page BookPage
	err := c.do(ctx, request{method: http.MethodGet, path: "/books/" + kind, query: q}, &page)
	if err != nil {
		return nil, mapError(err)
	}
	return page.Items, nil
}
