package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/types"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["hello"] != "world" {
		t.Fatalf("unexpected envelope data: %#v", envelope.Data)
	}
}

func TestWriteErrorUsesCodeMetadata(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "typed domain error keeps its message",
			err:        pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMPTY_CART",
			wantMsg:    "cart is empty",
		},
		{
			name:       "terminal state maps to 422",
			err:        pkgerrors.New(pkgerrors.CodeTerminalState, "order is in a terminal state"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "TERMINAL_STATE",
			wantMsg:    "order is in a terminal state",
		},
		{
			name:       "untyped error hides internals",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}

			var envelope types.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, envelope.Error.Code)
			}
			if envelope.Error.Message != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, envelope.Error.Message)
			}
		})
	}
}

func TestWriteErrorDetailsGatedByMetadata(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeOutOfStock, "requested quantity exceeds stock").
		WithDetails(map[string]any{"available": 2})
	WriteError(context.Background(), nil, rec, err)

	var envelope types.ErrorEnvelope
	if decodeErr := json.Unmarshal(rec.Body.Bytes(), &envelope); decodeErr != nil {
		t.Fatalf("decode body: %v", decodeErr)
	}
	details, ok := envelope.Error.Details.(map[string]any)
	if !ok || details["available"] != float64(2) {
		t.Fatalf("expected details to pass through, got %#v", envelope.Error.Details)
	}

	rec = httptest.NewRecorder()
	hidden := pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]any{"table": "orders"})
	WriteError(context.Background(), nil, rec, hidden)

	envelope = types.ErrorEnvelope{}
	if decodeErr := json.Unmarshal(rec.Body.Bytes(), &envelope); decodeErr != nil {
		t.Fatalf("decode body: %v", decodeErr)
	}
	if envelope.Error.Details != nil {
		t.Fatalf("expected details suppressed for NOT_FOUND, got %#v", envelope.Error.Details)
	}
}
