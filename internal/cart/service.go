package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
)

// productLoader is the slice of the catalog the cart needs: price, stock and
// vendor for the product being added.
type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart mutations for a buyer session. Every method resolves
// the session's single active cart; there is never more than one.
type Service interface {
	GetCart(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*models.CartRecord, error)
	UpdateQuantity(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, sessionID, productID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error)
	TotalCount(ctx context.Context, sessionID uuid.UUID) (int, error)
}

type service struct {
	repo     Repository
	products productLoader
}

// NewService builds the cart service.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) GetCart(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	record, err := s.repo.GetOrCreateActive(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

// AddItem merges quantity into an existing line for the product, or appends a
// new line snapshotting the product's current name and unit price. The merged
// quantity may not exceed the product's available stock.
func (s *service) AddItem(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*models.CartRecord, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	record, err := s.repo.GetOrCreateActive(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, record.ID, productID)
	switch {
	case err == nil:
		merged := item.Quantity + quantity
		if merged > product.StockQty {
			return nil, outOfStock(product, merged)
		}
		item.Quantity = merged
	case errors.Is(err, gorm.ErrRecordNotFound):
		if quantity > product.StockQty {
			return nil, outOfStock(product, quantity)
		}
		item = &models.CartItem{
			CartID:           record.ID,
			ProductID:        product.ID,
			VendorID:         product.VendorID,
			Name:             product.Name,
			UnitPriceCents:   product.PriceCents,
			Quantity:         quantity,
			DeliveryEstimate: product.DeliveryEstimate,
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return s.reload(ctx, sessionID)
}

// UpdateQuantity replaces the line's quantity. Zero or negative removes the
// line; updating a product that is not in the cart is an error.
func (s *service) UpdateQuantity(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*models.CartRecord, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	record, err := s.repo.GetOrCreateActive(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, record.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if quantity <= 0 {
		if _, err := s.repo.DeleteItem(ctx, record.ID, productID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return s.reload(ctx, sessionID)
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.StockQty {
		return nil, outOfStock(product, quantity)
	}

	item.Quantity = quantity
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return s.reload(ctx, sessionID)
}

// RemoveItem drops the line for the product. Removing a product that is not
// in the cart is a no-op.
func (s *service) RemoveItem(ctx context.Context, sessionID, productID uuid.UUID) (*models.CartRecord, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	record, err := s.repo.GetOrCreateActive(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if _, err := s.repo.DeleteItem(ctx, record.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.reload(ctx, sessionID)
}

// Clear empties the cart in one shot.
func (s *service) Clear(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	record, err := s.repo.GetOrCreateActive(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.ClearItems(ctx, record.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return s.reload(ctx, sessionID)
}

// TotalCount sums the quantities across all lines, counting units rather
// than distinct products.
func (s *service) TotalCount(ctx context.Context, sessionID uuid.UUID) (int, error) {
	record, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, item := range record.Items {
		total += item.Quantity
	}
	return total, nil
}

func (s *service) reload(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.repo.FindActive(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return record, nil
}

func outOfStock(product *models.Product, requested int) error {
	return pkgerrors.New(pkgerrors.CodeOutOfStock, "requested quantity exceeds stock").
		WithDetails(map[string]any{
			"product_id": product.ID,
			"available":  product.StockQty,
			"requested":  requested,
		})
}
