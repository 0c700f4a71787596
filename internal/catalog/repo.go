package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
)

// Repository defines the catalog persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filters ListFilters) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

// ListFilters narrows the product listing.
type ListFilters struct {
	Category string
	VendorID *uuid.UUID
	Query    string
}

// ProductRepository manages product rows with GORM.
type ProductRepository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *ProductRepository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &ProductRepository{db: tx}
}

// List returns active products matching the filters.
func (r *ProductRepository) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("is_active = ?", true).
		Order("name ASC")

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.VendorID != nil {
		query = query.Where("vendor_id = ?", *filters.VendorID)
	}
	if filters.Query != "" {
		query = query.Where("name LIKE ?", "%"+filters.Query+"%")
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns the product with the given id.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock atomically reduces stock for the product, refusing to go
// negative. Returns false when the remaining stock could not cover qty.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		Update("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
