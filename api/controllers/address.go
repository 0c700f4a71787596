package controllers

import (
	"net/http"

	"github.com/farmdirect/farmdirect-backend/api/middleware"
	"github.com/farmdirect/farmdirect-backend/api/responses"
	"github.com/farmdirect/farmdirect-backend/api/validators"
	addresssvc "github.com/farmdirect/farmdirect-backend/internal/address"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

// AddressList returns the session's address book, default first.
func AddressList(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		addresses, err := svc.List(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, addresses)
	}
}

// AddressCreate adds a delivery address.
func AddressCreate(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		var payload addresssvc.CreateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addr, err := svc.Create(r.Context(), middleware.SessionIDFromContext(r.Context()), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, addr)
	}
}

// AddressUpdate replaces the fields of one address.
func AddressUpdate(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addresssvc.CreateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addr, err := svc.Update(r.Context(), middleware.SessionIDFromContext(r.Context()), addressID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, addr)
	}
}

// AddressSetDefault moves the default flag onto one address.
func AddressSetDefault(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addr, err := svc.SetDefault(r.Context(), middleware.SessionIDFromContext(r.Context()), addressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, addr)
	}
}
