package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
)

// Repository defines the cart persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreateActive(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error)
	FindActive(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error)
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	MarkConverted(ctx context.Context, cartID uuid.UUID) (bool, error)
}

// CartRepository manages cart records and their line items with GORM.
type CartRepository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *CartRepository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &CartRepository{db: tx}
}

// GetOrCreateActive returns the session's active cart, creating an empty one
// when the session has none yet.
func (r *CartRepository) GetOrCreateActive(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error) {
	record, err := r.FindActive(ctx, sessionID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record = &models.CartRecord{
		SessionID: sessionID,
		Status:    enums.CartStatusActive,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	record.Items = []models.CartItem{}
	return record, nil
}

// FindActive loads the session's active cart with items, oldest line first.
func (r *CartRepository) FindActive(ctx context.Context, sessionID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("session_id = ? AND status = ?", sessionID, enums.CartStatusActive).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindItem loads a single cart line by cart and product.
func (r *CartRepository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveItem inserts or updates a cart line.
func (r *CartRepository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes a cart line. Returns false when no line matched, which
// callers treat as a no-op rather than an error.
func (r *CartRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClearItems deletes every line in the cart.
func (r *CartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// MarkConverted flips an active cart to converted. The status guard makes the
// update idempotent under concurrent checkouts.
func (r *CartRepository) MarkConverted(ctx context.Context, cartID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ? AND status = ?", cartID, enums.CartStatusActive).
		Update("status", enums.CartStatusConverted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
