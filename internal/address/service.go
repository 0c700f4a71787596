package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput carries the fields for a new address.
type CreateInput struct {
	Label     string `json:"label" validate:"omitempty,max=50"`
	Line1     string `json:"line1" validate:"required,max=200"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"required,max=100"`
	Pincode   string `json:"pincode" validate:"required,len=6,numeric"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	IsDefault bool   `json:"is_default"`
}

// Service manages a session's delivery address book.
type Service interface {
	List(ctx context.Context, sessionID uuid.UUID) ([]models.Address, error)
	Get(ctx context.Context, sessionID, id uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, sessionID uuid.UUID, input CreateInput) (*models.Address, error)
	Update(ctx context.Context, sessionID, id uuid.UUID, input CreateInput) (*models.Address, error)
	SetDefault(ctx context.Context, sessionID, id uuid.UUID) (*models.Address, error)
	ResolveForCheckout(ctx context.Context, sessionID uuid.UUID, addressID *uuid.UUID) (*models.Address, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the address service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, sessionID uuid.UUID) ([]models.Address, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	addresses, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

func (s *service) Get(ctx context.Context, sessionID, id uuid.UUID) (*models.Address, error) {
	addr, err := s.repo.GetByID(ctx, sessionID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return addr, nil
}

// Create inserts an address. The session's first address becomes the default
// regardless of the flag; an explicit default displaces the previous one.
func (s *service) Create(ctx context.Context, sessionID uuid.UUID, input CreateInput) (*models.Address, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	label := strings.TrimSpace(input.Label)
	if label == "" {
		label = "Home"
	}

	addr := &models.Address{
		SessionID: sessionID,
		Label:     label,
		Line1:     strings.TrimSpace(input.Line1),
		City:      strings.TrimSpace(input.City),
		State:     strings.TrimSpace(input.State),
		Pincode:   strings.TrimSpace(input.Pincode),
		Phone:     strings.TrimSpace(input.Phone),
		IsDefault: input.IsDefault,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if count == 0 {
			addr.IsDefault = true
		} else if addr.IsDefault {
			if err := repo.UnsetDefaults(ctx, sessionID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, addr)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return addr, nil
}

// Update replaces an address's fields. Setting is_default promotes the
// address and displaces the previous default; leaving it unset keeps the
// current flag, so a session always retains a default once it has one.
func (s *service) Update(ctx context.Context, sessionID, id uuid.UUID, input CreateInput) (*models.Address, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	label := strings.TrimSpace(input.Label)
	if label == "" {
		label = "Home"
	}

	var updated *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		addr, err := repo.GetByID(ctx, sessionID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return err
		}

		addr.Label = label
		addr.Line1 = strings.TrimSpace(input.Line1)
		addr.City = strings.TrimSpace(input.City)
		addr.State = strings.TrimSpace(input.State)
		addr.Pincode = strings.TrimSpace(input.Pincode)
		addr.Phone = strings.TrimSpace(input.Phone)

		if input.IsDefault && !addr.IsDefault {
			if err := repo.UnsetDefaults(ctx, sessionID); err != nil {
				return err
			}
			addr.IsDefault = true
		}

		if err := repo.Update(ctx, addr); err != nil {
			return err
		}
		updated = addr
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return updated, nil
}

// SetDefault moves the default flag onto the given address.
func (s *service) SetDefault(ctx context.Context, sessionID, id uuid.UUID) (*models.Address, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UnsetDefaults(ctx, sessionID); err != nil {
			return err
		}
		ok, err := repo.SetDefault(ctx, sessionID, id)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
	}
	return s.Get(ctx, sessionID, id)
}

// ResolveForCheckout picks the address an order ships to: the explicit one
// when given, otherwise the session's default. No address at all fails the
// checkout with NO_ADDRESS.
func (s *service) ResolveForCheckout(ctx context.Context, sessionID uuid.UUID, addressID *uuid.UUID) (*models.Address, error) {
	if addressID != nil {
		return s.Get(ctx, sessionID, *addressID)
	}

	addr, err := s.repo.FindDefault(ctx, sessionID)
	if err == nil {
		return addr, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default address")
	}

	// No default set. Fall back to any address before refusing.
	addresses, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	if len(addresses) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNoAddress, "no delivery address on file")
	}
	return &addresses[0], nil
}
