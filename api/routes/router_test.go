package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/api/controllers"
	addresssvc "github.com/farmdirect/farmdirect-backend/internal/address"
	cartsvc "github.com/farmdirect/farmdirect-backend/internal/cart"
	"github.com/farmdirect/farmdirect-backend/internal/catalog"
	checkoutsvc "github.com/farmdirect/farmdirect-backend/internal/checkout"
	orderssvc "github.com/farmdirect/farmdirect-backend/internal/orders"
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
	"github.com/farmdirect/farmdirect-backend/pkg/metrics"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testEnv struct {
	handler http.Handler
	db      *gorm.DB
	session uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Vendor{},
		&models.Product{},
		&models.CartRecord{},
		&models.CartItem{},
		&models.Address{},
		&models.Order{},
		&models.OrderLineItem{},
	))

	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	runner := gormTxRunner{db: conn}

	catalogRepo := catalog.NewRepository(conn)
	catalogService, err := catalog.NewService(catalogRepo)
	require.NoError(t, err)

	cartRepo := cartsvc.NewRepository(conn)
	cartService, err := cartsvc.NewService(cartRepo, catalogService)
	require.NoError(t, err)

	addressService, err := addresssvc.NewService(addresssvc.NewRepository(conn), runner)
	require.NoError(t, err)

	ordersRepo := orderssvc.NewRepository(conn)
	ordersService, err := orderssvc.NewService(ordersRepo, logg)
	require.NoError(t, err)

	checkoutService, err := checkoutsvc.NewService(
		cartRepo,
		catalogRepo,
		ordersRepo,
		addressService,
		runner,
		config.CheckoutConfig{DeliveryThreshold: 5000, DeliveryFee: 50, AdvancePercent: 30},
		logg,
	)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}

	handler := NewRouter(
		cfg,
		logg,
		map[string]controllers.Pinger{"database": okPinger{}},
		nil,
		metrics.NewHTTPMetrics(),
		Services{
			Catalog:  catalogService,
			Cart:     cartService,
			Checkout: checkoutService,
			Orders:   ordersService,
			Address:  addressService,
		},
	)

	return &testEnv{handler: handler, db: conn, session: uuid.New()}
}

func (e *testEnv) seedProduct(t *testing.T, priceCents, stock int) *models.Product {
	t.Helper()
	vendor := &models.Vendor{
		Name:     fmt.Sprintf("Vendor %s", uuid.NewString()[:8]),
		Location: "Nashik",
		IsActive: true,
	}
	require.NoError(t, e.db.Create(vendor).Error)
	product := &models.Product{
		VendorID:   vendor.ID,
		Name:       fmt.Sprintf("Product %s", uuid.NewString()[:8]),
		Category:   "vegetables",
		Unit:       "kg",
		PriceCents: priceCents,
		StockQty:   stock,
		IsActive:   true,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Session-Id", e.session.String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	e.handler.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	resp := httptest.NewRecorder()
	env.handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	env.handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	env.handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestSessionRequiredOnBuyerRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	env.handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	// The public catalog does not need a session.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp = httptest.NewRecorder()
	env.handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestCartCheckoutOrderFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tomato := env.seedProduct(t, 1000, 10)
	spinach := env.seedProduct(t, 500, 10)

	resp := env.do(t, http.MethodPost, "/api/v1/addresses", map[string]any{
		"line1":   "12 Market Road",
		"city":    "Nashik",
		"state":   "Maharashtra",
		"pincode": "422001",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": tomato.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": spinach.ID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, float64(3), decodeData(t, resp)["item_count"])

	resp = env.do(t, http.MethodGet, "/api/v1/checkout/quote", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	totals := decodeData(t, resp)["totals"].(map[string]any)
	require.Equal(t, float64(2550), totals["total_cents"])
	require.Equal(t, float64(765), totals["advance_cents"])

	resp = env.do(t, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusCreated, resp.Code)
	order := decodeData(t, resp)
	require.Equal(t, "pending", order["status"])
	require.Equal(t, "partial_paid", order["payment_status"])
	orderID := order["id"].(string)

	// The cart is empty again.
	resp = env.do(t, http.MethodGet, "/api/v1/cart/count", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, float64(0), decodeData(t, resp)["count"])

	// Settle and walk the fulfillment lifecycle to its end.
	resp = env.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/settle", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "fully_paid", decodeData(t, resp)["payment_status"])

	resp = env.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/settle", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	require.Equal(t, "ALREADY_SETTLED", decodeError(t, resp))

	for _, want := range []string{"processing", "delivered"} {
		resp = env.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/advance", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, want, decodeData(t, resp)["status"])
	}

	resp = env.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/advance", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	require.Equal(t, "TERMINAL_STATE", decodeError(t, resp))
}

func TestAddressUpdateOverHTTP(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/addresses", map[string]any{
		"line1":   "12 Market Road",
		"city":    "Nashik",
		"state":   "Maharashtra",
		"pincode": "422001",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	addressID := decodeData(t, resp)["id"].(string)

	resp = env.do(t, http.MethodPut, "/api/v1/addresses/"+addressID, map[string]any{
		"label":   "Office",
		"line1":   "7 College Road",
		"city":    "Nashik",
		"state":   "Maharashtra",
		"pincode": "422005",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	updated := decodeData(t, resp)
	require.Equal(t, "7 College Road", updated["line1"])
	require.Equal(t, "Office", updated["label"])
}

func TestCheckoutGuards(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "EMPTY_CART", decodeError(t, resp))

	product := env.seedProduct(t, 1000, 10)
	resp = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": product.ID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "NO_ADDRESS", decodeError(t, resp))
}

func TestCartStockGuardOverHTTP(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	product := env.seedProduct(t, 1000, 2)

	resp := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": product.ID,
		"quantity":   3,
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Equal(t, "OUT_OF_STOCK", decodeError(t, resp))
}
