package httppresentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appCart "github.com/Zhima-Mochi/minishop-cart/internal/application/cart"
	domainCart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domainCatalog "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	domainOrder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
)

type cartLineResponse struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Image        string `json:"image,omitempty"`
	Category     string `json:"category,omitempty"`
	StockCeiling int    `json:"stock"`
	Quantity     int    `json:"quantity"`
	Subtotal     string `json:"subtotal"`
}

type cartResponse struct {
	Items       []cartLineResponse `json:"items"`
	TotalItems  int                `json:"totalItems"`
	TotalAmount string             `json:"totalAmount"`
	Processing  bool               `json:"processing"`
}

func toCartResponse(c domainCart.Cart, processing bool) cartResponse {
	lines := c.Lines()
	items := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		items = append(items, cartLineResponse{
			ProductID:    l.ProductID,
			Name:         l.Name,
			Price:        l.Price.StringFixed(2),
			Image:        l.Image,
			Category:     l.Category,
			StockCeiling: l.StockCeiling,
			Quantity:     l.Quantity,
			Subtotal:     l.Subtotal().StringFixed(2),
		})
	}
	return cartResponse{
		Items:       items,
		TotalItems:  c.TotalItems(),
		TotalAmount: c.TotalAmount().StringFixed(2),
		Processing:  processing,
	}
}

func (h *Handler) store(r *http.Request) *appCart.Store {
	return h.carts.Get(sessionFromContext(r.Context()))
}

// writeCart answers a mutation with the resulting cart, or with the error when
// the store refused it.
func writeCart(w http.ResponseWriter, r *http.Request, s *appCart.Store, c domainCart.Cart, err error) {
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c, s.Processing()))
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	writeJSON(w, http.StatusOK, toCartResponse(s.Snapshot(), s.Processing()))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	c, err := s.Clear()
	writeCart(w, r, s, c, err)
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

// handleAddItem reads the current product so the line snapshots fresh stock
// and price. Out-of-stock products are refused here; the store only clamps.
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.uc.GetProduct.Execute(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	if !product.InStock() {
		writeDomainError(r.Context(), w, domainCatalog.ErrOutOfStock)
		return
	}

	s := h.store(r)
	c, err := s.AddItem(product.Snapshot(), quantity)
	writeCart(w, r, s, c, err)
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

// handleUpdateQuantity accepts 0..stock. Zero removes the line; the upper
// bound is the stock captured when the line was created.
func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	productID := chi.URLParam(r, "productID")

	s := h.store(r)
	c, err := s.SetQuantity(productID, *req.Quantity)
	writeCart(w, r, s, c, err)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	c, err := s.RemoveItem(chi.URLParam(r, "productID"))
	writeCart(w, r, s, c, err)
}

type appliedLineResponse struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

type checkoutResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	OrderID string                `json:"orderId,omitempty"`
	Applied []appliedLineResponse `json:"applied,omitempty"`
	Failed  []string              `json:"failed,omitempty"`
	Error   string                `json:"error,omitempty"`
}

func toCheckoutResponse(res *appCart.CheckoutResult) checkoutResponse {
	if res == nil {
		return checkoutResponse{Message: appCart.MessageFailure}
	}
	out := checkoutResponse{
		Success: res.Success,
		Message: res.Message,
		OrderID: res.OrderID,
		Failed:  res.Failed,
	}
	for _, a := range res.Applied {
		out.Applied = append(out.Applied, appliedLineResponse{ProductID: a.ProductID, Stock: a.Stock})
	}
	return out
}

// handleCheckout submits the session cart. The body carries the shipping
// form; an optional Idempotency-Key header guards against double submits.
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var shipping domainOrder.ShippingInfo
	if err := decodeJSON(w, r, &shipping); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	s := h.store(r)
	res, err := s.ProcessCheckout(r.Context(), shipping, r.Header.Get(headerIdempotencyKey))
	body := toCheckoutResponse(res)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			writeDomainError(r.Context(), w, err)
			return
		}
		body.Error = err.Error()
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusCreated, body)
}
