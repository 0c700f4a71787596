package controllers

import (
	"net/http"
	"strings"

	"github.com/farmdirect/farmdirect-backend/api/responses"
	"github.com/farmdirect/farmdirect-backend/api/validators"
	"github.com/farmdirect/farmdirect-backend/internal/catalog"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

// ProductsList exposes the browsable catalog.
func ProductsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		vendorID, err := validators.ParseQueryUUID(r, "vendor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := catalog.ListFilters{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			VendorID: vendorID,
			Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		}

		products, err := svc.ListProducts(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// ProductFetch returns one catalog listing.
func ProductFetch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
