package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/internal/cart"
	"github.com/farmdirect/farmdirect-backend/internal/catalog"
	"github.com/farmdirect/farmdirect-backend/internal/orders"
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// addressResolver is the slice of the address book checkout needs.
type addressResolver interface {
	ResolveForCheckout(ctx context.Context, sessionID uuid.UUID, addressID *uuid.UUID) (*models.Address, error)
}

// PlaceOrderInput carries the checkout request. AddressID is optional; the
// session's default address is used when it is omitted.
type PlaceOrderInput struct {
	AddressID *uuid.UUID `json:"address_id"`
}

// Quote is the priced view of the active cart before any order exists.
type Quote struct {
	Items    []models.CartItem `json:"items"`
	Totals   Totals            `json:"totals"`
	VendorID *uuid.UUID        `json:"vendor_id,omitempty"`
}

// Service turns an active cart into an order.
type Service interface {
	QuoteCart(ctx context.Context, sessionID uuid.UUID) (*Quote, error)
	PlaceOrder(ctx context.Context, sessionID uuid.UUID, input PlaceOrderInput) (*models.Order, error)
}

type service struct {
	carts     cart.Repository
	products  catalog.Repository
	orders    orders.Repository
	addresses addressResolver
	tx        txRunner
	cfg       config.CheckoutConfig
	logg      *logger.Logger
}

// NewService builds the checkout service.
func NewService(
	carts cart.Repository,
	products catalog.Repository,
	orderRepo orders.Repository,
	addresses addressResolver,
	tx txRunner,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address resolver required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:     carts,
		products:  products,
		orders:    orderRepo,
		addresses: addresses,
		tx:        tx,
		cfg:       cfg,
		logg:      logg,
	}, nil
}

// QuoteCart prices the active cart without touching stock or creating
// anything.
func (s *service) QuoteCart(ctx context.Context, sessionID uuid.UUID) (*Quote, error) {
	record, err := s.activeCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Items:    record.Items,
		Totals:   ComputeTotals(record.Items, s.cfg),
		VendorID: AssignVendor(record.Items),
	}, nil
}

// PlaceOrder snapshots the active cart into an order, collects the advance,
// decrements stock and converts the cart, all in one transaction. The
// resulting order starts pending with the advance recorded as partial_paid.
func (s *service) PlaceOrder(ctx context.Context, sessionID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	record, err := s.activeCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	addr, err := s.addresses.ResolveForCheckout(ctx, sessionID, input.AddressID)
	if err != nil {
		return nil, err
	}

	totals := ComputeTotals(record.Items, s.cfg)
	order := &models.Order{
		OrderNumber:      orderNumber(),
		SessionID:        sessionID,
		Status:           enums.OrderStatusPending,
		PaymentStatus:    enums.PaymentStatusPartialPaid,
		SubtotalCents:    totals.SubtotalCents,
		DeliveryFeeCents: totals.DeliveryFeeCents,
		TotalCents:       totals.TotalCents,
		AdvanceCents:     totals.AdvanceCents,
		RemainingCents:   totals.RemainingCents,
		VendorID:         AssignVendor(record.Items),
		AddressID:        addr.ID,
		Items:            snapshotLines(record.Items),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		for _, item := range record.Items {
			ok, err := products.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeOutOfStock, "stock changed since the cart was built").
					WithDetails(map[string]any{
						"product_id": item.ProductID,
						"requested":  item.Quantity,
					})
			}
		}

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		converted, err := s.carts.WithTx(tx).MarkConverted(ctx, record.ID)
		if err != nil {
			return err
		}
		if !converted {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart was already checked out")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":      order.ID,
		"order_number":  order.OrderNumber,
		"total_cents":   order.TotalCents,
		"advance_cents": order.AdvanceCents,
	}), "order placed")

	return s.reload(ctx, sessionID, order.ID)
}

func (s *service) activeCart(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	record, err := s.carts.FindActive(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}
	return record, nil
}

func (s *service) reload(ctx context.Context, sessionID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, sessionID, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return order, nil
}

// snapshotLines deep-copies cart lines into order lines. The order keeps its
// own rows so later cart or catalog edits cannot reach back into it.
func snapshotLines(items []models.CartItem) []models.OrderLineItem {
	out := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.OrderLineItem{
			ProductID:        item.ProductID,
			VendorID:         item.VendorID,
			Name:             item.Name,
			UnitPriceCents:   item.UnitPriceCents,
			Quantity:         item.Quantity,
			LineTotalCents:   item.UnitPriceCents * item.Quantity,
			DeliveryEstimate: item.DeliveryEstimate,
		})
	}
	return out
}

// orderNumber derives a human-quotable identifier from the placement time.
// Collisions are prevented by the unique index; microsecond resolution makes
// them vanishingly rare to begin with.
func orderNumber() int64 {
	return time.Now().UnixMicro()
}
