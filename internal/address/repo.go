package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
)

// Repository defines the address book persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Address, error)
	GetByID(ctx context.Context, sessionID, id uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, addr *models.Address) error
	Update(ctx context.Context, addr *models.Address) error
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
	FindDefault(ctx context.Context, sessionID uuid.UUID) (*models.Address, error)
	UnsetDefaults(ctx context.Context, sessionID uuid.UUID) error
	SetDefault(ctx context.Context, sessionID, id uuid.UUID) (bool, error)
}

// AddressRepository manages address rows with GORM.
type AddressRepository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *AddressRepository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &AddressRepository{db: tx}
}

// ListBySession returns the session's addresses, default first.
func (r *AddressRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// GetByID loads one address, scoped to the owning session.
func (r *AddressRepository) GetByID(ctx context.Context, sessionID, id uuid.UUID) (*models.Address, error) {
	var addr models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", id, sessionID).
		First(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// Create inserts a new address.
func (r *AddressRepository) Create(ctx context.Context, addr *models.Address) error {
	return r.db.WithContext(ctx).Create(addr).Error
}

// Update persists changes to an existing address.
func (r *AddressRepository) Update(ctx context.Context, addr *models.Address) error {
	return r.db.WithContext(ctx).Save(addr).Error
}

// CountBySession returns how many addresses the session has.
func (r *AddressRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// FindDefault returns the session's default address.
func (r *AddressRepository) FindDefault(ctx context.Context, sessionID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND is_default = ?", sessionID, true).
		First(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// UnsetDefaults clears the default flag across the session's addresses.
func (r *AddressRepository) UnsetDefaults(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("session_id = ? AND is_default = ?", sessionID, true).
		Update("is_default", false).Error
}

// SetDefault marks one address as default. Returns false when the address
// does not belong to the session.
func (r *AddressRepository) SetDefault(ctx context.Context, sessionID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ? AND session_id = ?", id, sessionID).
		Update("is_default", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
