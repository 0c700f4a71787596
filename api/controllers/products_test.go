package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/internal/catalog"
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
)

func newCatalogService(t *testing.T) (catalog.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Vendor{}, &models.Product{}))
	svc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestProductFetchRejectsMalformedID(t *testing.T) {
	t.Parallel()

	svc, _ := newCatalogService(t)

	r := chi.NewRouter()
	r.Get("/products/{productId}", ProductFetch(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProductsListFiltersByCategory(t *testing.T) {
	t.Parallel()

	svc, conn := newCatalogService(t)
	vendor := &models.Vendor{Name: "Anand Farms", Location: "Nashik", IsActive: true}
	require.NoError(t, conn.Create(vendor).Error)
	require.NoError(t, conn.Create(&models.Product{
		VendorID: vendor.ID, Name: "Tomatoes", Category: "vegetables",
		Unit: "kg", PriceCents: 1000, StockQty: 10, IsActive: true,
	}).Error)
	require.NoError(t, conn.Create(&models.Product{
		VendorID: vendor.ID, Name: "Mangoes", Category: "fruits",
		Unit: "kg", PriceCents: 3000, StockQty: 4, IsActive: true,
	}).Error)

	r := chi.NewRouter()
	r.Get("/products", ProductsList(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/products?category=fruits", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data []models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "Mangoes", envelope.Data[0].Name)
}
