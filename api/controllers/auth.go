package controllers

import (
	"net/http"

	"github.com/bookworm-shop/storefront/api/responses"
	"github.com/bookworm-shop/storefront/api/validators"
	"github.com/bookworm-shop/storefront/internal/session"
	"github.com/bookworm-shop/storefront/pkg/bookworm"
	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Admin    bool   `json:"admin"`
}

type loginResponse struct {
	User        userResponse `json:"user"`
	MergedItems int          `json:"mergedItems"`
}

func newUserResponse(user *bookworm.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName(),
		Admin:    user.Admin,
	}
}

// AuthLogin signs the device in and reports how many guest cart units moved
// into the user's cart.
func AuthLogin(mgr *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, merged, err := mgr.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			User:        newUserResponse(user),
			MergedItems: merged,
		})
	}
}

// AuthLogout ends the session. Always succeeds locally.
func AuthLogout(mgr *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		if err := mgr.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthMe serves the signed-in profile, 401 when there is none.
func AuthMe(mgr *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		user, ok, err := mgr.CurrentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in"))
			return
		}
		responses.WriteSuccess(w, newUserResponse(user))
	}
}
