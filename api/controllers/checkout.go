package controllers

import (
	"net/http"

	"github.com/farmdirect/farmdirect-backend/api/middleware"
	"github.com/farmdirect/farmdirect-backend/api/responses"
	"github.com/farmdirect/farmdirect-backend/api/validators"
	checkoutsvc "github.com/farmdirect/farmdirect-backend/internal/checkout"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

// CheckoutQuote prices the active cart without placing anything.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		quote, err := svc.QuoteCart(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CheckoutPlaceOrder converts the active cart into an order, collecting the
// advance.
func CheckoutPlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutsvc.PlaceOrderInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.PlaceOrder(r.Context(), middleware.SessionIDFromContext(r.Context()), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
