package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Vendor{},
		&models.Product{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

func mustCreateVendor(t *testing.T, tx *gorm.DB) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		ID:       uuid.New(),
		Name:     fmt.Sprintf("Vendor %s", uuid.NewString()[:8]),
		Location: "Nashik",
		Rating:   4.5,
		IsActive: true,
	}
	if err := tx.Create(vendor).Error; err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	return vendor
}

func mustCreateProduct(t *testing.T, tx *gorm.DB, vendorID uuid.UUID, priceCents, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:               uuid.New(),
		VendorID:         vendorID,
		Name:             fmt.Sprintf("Product %s", uuid.NewString()[:8]),
		Category:         "vegetables",
		Unit:             "kg",
		PriceCents:       priceCents,
		StockQty:         stock,
		DeliveryEstimate: "1 day",
		IsActive:         true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
