package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
)

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetProductRequiresID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, _ := NewService(NewRepository(db))

	_, err := svc.GetProduct(context.Background(), uuid.Nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestListProductsFilters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	vendor := mustCreateVendor(t, db)
	other := mustCreateVendor(t, db)
	mustCreateProduct(t, db, vendor.ID, 1000, 10)
	mustCreateProduct(t, db, other.ID, 500, 5)

	inactive := mustCreateProduct(t, db, vendor.ID, 900, 3)
	if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	svc, _ := NewService(NewRepository(db))

	all, err := svc.ListProducts(context.Background(), ListFilters{})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 active products, got %d", len(all))
	}

	scoped, err := svc.ListProducts(context.Background(), ListFilters{VendorID: &vendor.ID})
	if err != nil {
		t.Fatalf("list by vendor: %v", err)
	}
	if len(scoped) != 1 {
		t.Fatalf("expected 1 product for vendor, got %d", len(scoped))
	}
}

func TestDecrementStockGuardsAvailability(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	vendor := mustCreateVendor(t, db)
	product := mustCreateProduct(t, db, vendor.ID, 1000, 3)
	repo := NewRepository(db)

	ok, err := repo.DecrementStock(context.Background(), product.ID, 2)
	if err != nil || !ok {
		t.Fatalf("expected decrement to succeed, ok=%v err=%v", ok, err)
	}

	ok, err = repo.DecrementStock(context.Background(), product.ID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected decrement beyond stock to be refused")
	}

	reloaded, err := repo.GetByID(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQty != 1 {
		t.Fatalf("expected stock 1, got %d", reloaded.StockQty)
	}
}
