package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/farmdirect/farmdirect-backend/api/responses"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// Session requires the opaque buyer session identifier on every request and
// injects it into the context. The identifier is client-generated; the
// server only cares that it is a well-formed UUID so carts, addresses and
// orders stay scoped to one buyer.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "X-Session-Id header required"))
				return
			}

			sessionID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "X-Session-Id must be a uuid"))
				return
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
