package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
)

// Repository defines the order persistence surface. Orders are insert-only
// except for the two guarded status columns; line items never change after
// placement.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Order, error)
	GetByID(ctx context.Context, sessionID, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus) (bool, error)
}

// OrderRepository manages order rows with GORM.
type OrderRepository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *OrderRepository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &OrderRepository{db: tx}
}

// Create inserts the order together with its line items.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ListBySession returns the session's orders, newest first.
func (r *OrderRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Vendor").
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads one order, scoped to the owning session.
func (r *OrderRepository) GetByID(ctx context.Context, sessionID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Vendor").
		Where("id = ? AND session_id = ?", id, sessionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves the fulfillment status from one value to the next. The
// status guard in the WHERE clause keeps the lifecycle monotonic under
// concurrent updates; false means the order was no longer in `from`.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdatePaymentStatus is the payment-side twin of UpdateStatus.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, from).
		Update("payment_status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
