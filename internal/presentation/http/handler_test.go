package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appCart "github.com/Zhima-Mochi/minishop-cart/internal/application/cart"
	appCatalog "github.com/Zhima-Mochi/minishop-cart/internal/application/catalog"
	appOrder "github.com/Zhima-Mochi/minishop-cart/internal/application/order"
	domainCatalog "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	domainOrder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/prometrics"
)

type testServer struct {
	router  http.Handler
	catalog *memory.CatalogRepository
	orders  *memory.OrderRepository
	reg     *prometheus.Registry
}

func product(t *testing.T, id, category, price string, stock int) *domainCatalog.Product {
	t.Helper()
	p, err := domainCatalog.NewProduct(id, "Product "+id, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	p.Category = category
	return p
}

func newTestServer(t *testing.T, health map[string]HealthCheck) *testServer {
	t.Helper()

	reg := prometheus.NewRegistry()
	counters, histograms := prometrics.Standard(prometrics.New(reg, "", ""))
	tel := infraobs.New(infraobs.Options{Counters: counters, Histograms: histograms})

	catalog := memory.NewCatalogRepository(
		product(t, "tea", "drinks", "4.50", 5),
		product(t, "mug", "kitchen", "12.00", 2),
		product(t, "kettle", "kitchen", "30.00", 0),
	)
	orders := memory.NewOrderRepository()

	adjust := appCatalog.NewAdjustStockUseCase(catalog, nil, tel)
	place := appOrder.NewPlaceOrderUseCase(orders, id.NewUUIDGenerator(), nil, tel)
	checkout := appCart.NewProcessCheckoutUseCase(adjust, place, memory.NewIdempotencyGuard(), appCart.CheckoutOptions{}, tel)

	h := NewHandler(UseCases{
		GetProduct:      appCatalog.NewGetProductUseCase(catalog, tel),
		ListProducts:    appCatalog.NewListProductsUseCase(catalog, tel),
		ListCategories:  appCatalog.NewListCategoriesUseCase(catalog, tel),
		ListOrders:      appOrder.NewListOrdersUseCase(orders, tel),
		GetOrder:        appOrder.NewGetOrderUseCase(orders, tel),
		CancelOrder:     appOrder.NewCancelOrderUseCase(orders, nil, tel),
		ConfirmDelivery: appOrder.NewConfirmDeliveryUseCase(orders, nil, tel),
	}, appCart.NewRegistry(checkout, tel), health, tel)

	return &testServer{router: h.Router(), catalog: catalog, orders: orders, reg: reg}
}

func (s *testServer) do(t *testing.T, method, path, session, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(headerSessionID, session)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSessionAndRequestIDsAreEchoed(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/cart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerSessionID))
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	rec = s.do(t, http.MethodGet, "/cart", "alice", "")
	assert.Equal(t, "alice", rec.Header().Get(headerSessionID))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, map[string]HealthCheck{
		"db": func(context.Context) error { return nil },
	})
	rec := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	s = newTestServer(t, map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/products?category=kitchen", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]productResponse](t, rec)
	require.Len(t, products, 2)
	assert.Equal(t, "mug", products[0].ID)
	assert.Equal(t, "12.00", products[0].Price)

	rec = s.do(t, http.MethodGet, "/products/tea", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[productResponse](t, rec).Stock)

	rec = s.do(t, http.MethodGet, "/products/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"drinks", "kitchen"}, decode[[]string](t, rec))
}

func TestCartMutations(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/cart/items", "alice", `{"productId":"tea"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decode[cartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	// Adding past the stock clamps to it.
	rec = s.do(t, http.MethodPost, "/cart/items", "alice", `{"productId":"tea","quantity":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decode[cartResponse](t, rec)
	assert.Equal(t, 5, cart.TotalItems)
	assert.Equal(t, "22.50", cart.TotalAmount)

	rec = s.do(t, http.MethodPatch, "/cart/items/tea", "alice", `{"quantity":6}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/cart/items/tea", "alice", `{"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[cartResponse](t, rec).TotalItems)

	rec = s.do(t, http.MethodPost, "/cart/items", "alice", `{"productId":"mug","quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, "/cart/items/tea", "alice", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decode[cartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "mug", cart.Items[0].ProductID)

	rec = s.do(t, http.MethodDelete, "/cart/items/mug", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cartResponse](t, rec).Items)

	// Sessions do not share carts.
	s.do(t, http.MethodPost, "/cart/items", "alice", `{"productId":"tea"}`)
	rec = s.do(t, http.MethodGet, "/cart", "bob", "")
	assert.Empty(t, decode[cartResponse](t, rec).Items)

	rec = s.do(t, http.MethodDelete, "/cart", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[cartResponse](t, rec).TotalItems)
}

func TestAddItemRejections(t *testing.T) {
	s := newTestServer(t, nil)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"out of stock", `{"productId":"kettle"}`, http.StatusConflict},
		{"unknown product", `{"productId":"nope"}`, http.StatusNotFound},
		{"missing product id", `{"quantity":1}`, http.StatusBadRequest},
		{"zero quantity", `{"productId":"tea","quantity":0}`, http.StatusBadRequest},
		{"unknown field", `{"productId":"tea","colour":"red"}`, http.StatusBadRequest},
		{"malformed", `{"productId":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/cart/items", "alice", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	rec := s.do(t, http.MethodPost, "/cart/items", "alice", `{}`)
	body := decode[errorResponse](t, rec)
	assert.Contains(t, body.Fields, "productId")
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	rec := s.do(t, http.MethodPost, "/cart/checkout", "alice", `{"address":"1 Main St"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty cart")

	s.do(t, http.MethodPost, "/cart/items", "alice", `{"productId":"tea","quantity":2}`)
	s.do(t, http.MethodPost, "/cart/items", "alice", `{"productId":"mug","quantity":1}`)

	rec = s.do(t, http.MethodPost, "/cart/checkout", "alice", `{"address":"  ","phone":"abc"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	invalid := decode[errorResponse](t, rec)
	assert.Contains(t, invalid.Fields, "address")
	assert.Contains(t, invalid.Fields, "phone")

	rec = s.do(t, http.MethodPost, "/cart/checkout", "alice",
		`{"address":"1 Main St","phone":"+1 (555) 010-0199","notes":"leave at door"}`,
		headerIdempotencyKey, "key-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[checkoutResponse](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, appCart.MessageSuccess, res.Message)
	require.NotEmpty(t, res.OrderID)

	rec = s.do(t, http.MethodGet, "/cart", "alice", "")
	assert.Empty(t, decode[cartResponse](t, rec).Items, "cart is cleared on success")

	tea, err := s.catalog.Get(ctx, "tea")
	require.NoError(t, err)
	assert.Equal(t, 3, tea.Stock)
	mug, err := s.catalog.Get(ctx, "mug")
	require.NoError(t, err)
	assert.Equal(t, 1, mug.Stock)

	o, err := s.orders.FindByID(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "alice", o.CustomerID)
	assert.Equal(t, "1 Main St", o.Shipping.Address)
	assert.Equal(t, "21.00", o.Total.StringFixed(2))

	// Reusing the key is refused and the new cart is kept.
	s.do(t, http.MethodPost, "/cart/items", "alice", `{"productId":"tea"}`)
	rec = s.do(t, http.MethodPost, "/cart/checkout", "alice", `{"address":"1 Main St"}`,
		headerIdempotencyKey, "key-1")
	require.Equal(t, http.StatusConflict, rec.Code)
	dup := decode[checkoutResponse](t, rec)
	assert.False(t, dup.Success)
	assert.Equal(t, appCart.MessageFailure, dup.Message)

	rec = s.do(t, http.MethodGet, "/cart", "alice", "")
	assert.Equal(t, 1, decode[cartResponse](t, rec).TotalItems)
}

func TestOrderRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	s.do(t, http.MethodPost, "/cart/items", "alice", `{"productId":"tea"}`)
	rec := s.do(t, http.MethodPost, "/cart/checkout", "alice", `{"address":"1 Main St"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := decode[checkoutResponse](t, rec).OrderID

	rec = s.do(t, http.MethodGet, "/orders", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]orderResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, domainOrder.StatusPending, list[0].Status)
	assert.Equal(t, "4.50", list[0].Total)

	rec = s.do(t, http.MethodGet, "/orders/"+orderID, "bob", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "orders of other sessions are hidden")

	rec = s.do(t, http.MethodPost, "/orders/"+orderID+"/received", "alice", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "a pending order cannot be received")

	rec = s.do(t, http.MethodPost, "/orders/"+orderID+"/cancel", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domainOrder.StatusCancelled, decode[orderResponse](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/orders/"+orderID, "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domainOrder.StatusCancelled, decode[orderResponse](t, rec).Status)
}

func TestHTTPMetricsUseRoutePattern(t *testing.T) {
	s := newTestServer(t, nil)

	s.do(t, http.MethodGet, "/products/tea", "", "")
	s.do(t, http.MethodGet, "/products/mug", "", "")
	s.do(t, http.MethodGet, "/does-not-exist", "", "")

	families, err := s.reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			got[labels["route"]+" "+labels["status"]] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, got["/products/{productID} 200"])
	assert.Equal(t, 1.0, got[routeUnknown+" 404"])
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domainOrder.ErrNotFound:                http.StatusNotFound,
		appCart.ErrEmptyCart:                   http.StatusBadRequest,
		appCart.ErrQuantityAboveStock:          http.StatusBadRequest,
		appCart.ErrCheckoutInProgress:          http.StatusConflict,
		domainOrder.ErrInvalidStateTransition:  http.StatusConflict,
		appCart.ErrStockUpdate:                 http.StatusBadGateway,
		context.DeadlineExceeded:               http.StatusGatewayTimeout,
		errors.New("boom"):                     http.StatusInternalServerError,
		errors.Join(appCart.ErrOrderPlacement): http.StatusBadGateway,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}
