package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

// Service exposes the post-placement order operations: listing, settling the
// remaining balance and walking the fulfillment lifecycle forward.
type Service interface {
	List(ctx context.Context, sessionID uuid.UUID) ([]models.Order, error)
	Get(ctx context.Context, sessionID, id uuid.UUID) (*models.Order, error)
	SettleRemainder(ctx context.Context, sessionID, id uuid.UUID) (*models.Order, error)
	AdvanceStatus(ctx context.Context, sessionID, id uuid.UUID) (*models.Order, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the orders service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, sessionID uuid.UUID) ([]models.Order, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	out, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, sessionID, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, sessionID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// SettleRemainder records the payment of the outstanding balance, moving the
// payment status from partial_paid to fully_paid. Settling twice fails with
// ALREADY_SETTLED; the order's monetary fields never change.
func (s *service) SettleRemainder(ctx context.Context, sessionID, id uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == enums.PaymentStatusFullyPaid {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadySettled, "remainder already settled")
	}

	ok, err := s.repo.UpdatePaymentStatus(ctx, id, enums.PaymentStatusPartialPaid, enums.PaymentStatusFullyPaid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle remainder")
	}
	if !ok {
		// Lost a race with a concurrent settle, or the order never had its
		// advance collected. Re-read to report the right failure.
		current, err := s.Get(ctx, sessionID, id)
		if err != nil {
			return nil, err
		}
		if current.PaymentStatus == enums.PaymentStatusFullyPaid {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadySettled, "remainder already settled")
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting settlement").
			WithDetails(map[string]any{"payment_status": current.PaymentStatus})
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":        id,
		"remaining_cents": order.RemainingCents,
	}), "remainder settled")

	return s.Get(ctx, sessionID, id)
}

// AdvanceStatus moves the fulfillment status one step forward. Advancing a
// delivered order fails with TERMINAL_STATE.
func (s *service) AdvanceStatus(ctx context.Context, sessionID, id uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}

	next, ok := order.Status.Next()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeTerminalState, "order is in a terminal state").
			WithDetails(map[string]any{"status": order.Status})
	}

	applied, err := s.repo.UpdateStatus(ctx, id, order.Status, next)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": id,
		"from":     order.Status,
		"to":       next,
	}), "order status advanced")

	return s.Get(ctx, sessionID, id)
}
