package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookworm-shop/storefront/api/responses"
	"github.com/bookworm-shop/storefront/internal/catalog"
	"github.com/bookworm-shop/storefront/pkg/bookworm"
	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/logger"
	"github.com/bookworm-shop/storefront/pkg/pagination"
)

const defaultRailLimit = 10

// BooksList serves the filtered, paginated catalog listing.
func BooksList(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query := r.URL.Query()
		pages := pagination.FromQuery(query).Normalize()
		params := bookworm.ListBooksParams{
			SortBy: query.Get("sort_by"),
			Page:   pages.Page,
			Size:   pages.Size,
		}
		if v := query.Get("category_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil || id <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category_id"))
				return
			}
			params.CategoryID = id
		}
		if v := query.Get("author_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil || id <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid author_id"))
				return
			}
			params.AuthorID = id
		}
		if v := query.Get("min_rating"); v != "" {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil || rating < 0 || rating > 5 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid min_rating"))
				return
			}
			params.MinRating = rating
		}

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// BookDetail serves one book by id.
func BookDetail(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		bookID, err := bookIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Detail(r.Context(), bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// BooksRail serves one of the storefront home rails.
func BooksRail(svc *catalog.Service, logg *logger.Logger, rail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit := defaultRailLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			limit = parsed
		}

		var (
			books []catalog.DisplayBook
			err   error
		)
		switch rail {
		case "on-sale":
			books, err = svc.OnSale(r.Context(), limit)
		case "recommended":
			books, err = svc.Recommended(r.Context(), limit)
		case "popular":
			books, err = svc.Popular(r.Context(), limit)
		default:
			err = pkgerrors.New(pkgerrors.CodeNotFound, "unknown rail")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, books)
	}
}

func bookIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "bookID")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid book id")
	}
	return id, nil
}
