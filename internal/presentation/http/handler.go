package httppresentation

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	appCart "github.com/Zhima-Mochi/minishop-cart/internal/application/cart"
	appCatalog "github.com/Zhima-Mochi/minishop-cart/internal/application/catalog"
	appOrder "github.com/Zhima-Mochi/minishop-cart/internal/application/order"
	domainCatalog "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	domainOrder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerSessionID      = "X-Session-ID"
	headerIdempotencyKey = "Idempotency-Key"
)

// Carts hands out the cart store of a session.
type Carts interface {
	Get(sessionID string) *appCart.Store
}

// UseCases groups the read and lifecycle operations the HTTP surface calls.
type UseCases struct {
	GetProduct      application.UseCase[string, *domainCatalog.Product]
	ListProducts    application.UseCase[appCatalog.ListProductsInput, []*domainCatalog.Product]
	ListCategories  application.UseCase[struct{}, []string]
	ListOrders      application.UseCase[string, []*domainOrder.Order]
	GetOrder        application.UseCase[appOrder.GetOrderInput, *domainOrder.Order]
	CancelOrder     application.UseCase[appOrder.TransitionInput, *domainOrder.Order]
	ConfirmDelivery application.UseCase[appOrder.TransitionInput, *domainOrder.Order]
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	uc     UseCases
	carts  Carts
	health map[string]HealthCheck
	log    observability.Logger
	tel    observability.Observability
}

func NewHandler(uc UseCases, carts Carts, health map[string]HealthCheck, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		uc:     uc,
		carts:  carts,
		health: health,
		log:    tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:    tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Trace → Session → Request logger + metrics → Access log → Handler
	r.Use(
		h.withTrace,
		withSession,
		ObservabilityMiddleware(h.log, h.tel),
		h.withAccessLog,
	)

	r.Get("/health", h.handleHealth)

	r.Get("/products", h.handleListProducts)
	r.Get("/products/{productID}", h.handleGetProduct)
	r.Get("/categories", h.handleListCategories)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.handleGetCart)
		r.Delete("/", h.handleClearCart)
		r.Post("/items", h.handleAddItem)
		r.Patch("/items/{productID}", h.handleUpdateQuantity)
		r.Delete("/items/{productID}", h.handleRemoveItem)
		r.Post("/checkout", h.handleCheckout)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleListOrders)
		r.Get("/{orderID}", h.handleGetOrder)
		r.Post("/{orderID}/cancel", h.handleCancelOrder)
		r.Post("/{orderID}/received", h.handleConfirmDelivery)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	failed := make(map[string]string)
	for name, check := range h.health {
		if err := check(r.Context()); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "checks": failed})
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
