package httppresentation

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	appOrder "github.com/Zhima-Mochi/minishop-cart/internal/application/order"
	domainOrder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
)

type orderLineResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type orderResponse struct {
	ID        string                   `json:"id"`
	Status    domainOrder.Status       `json:"status"`
	Items     []orderLineResponse      `json:"items"`
	ItemCount int                      `json:"itemCount"`
	Total     string                   `json:"total"`
	Shipping  domainOrder.ShippingInfo `json:"shipping"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

func toOrderResponse(o *domainOrder.Order) orderResponse {
	items := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orderLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return orderResponse{
		ID:        o.ID,
		Status:    o.Status,
		Items:     items,
		ItemCount: o.ItemCount(),
		Total:     o.Total.StringFixed(2),
		Shipping:  o.Shipping,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.uc.ListOrders.Execute(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder.Execute(r.Context(), appOrder.GetOrderInput{
		CustomerID: sessionFromContext(r.Context()),
		OrderID:    chi.URLParam(r, "orderID"),
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.uc.CancelOrder)
}

// handleConfirmDelivery is the customer's "mark as received".
func (h *Handler) handleConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.uc.ConfirmDelivery)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	uc application.UseCase[appOrder.TransitionInput, *domainOrder.Order],
) {
	o, err := uc.Execute(r.Context(), appOrder.TransitionInput{
		CustomerID: sessionFromContext(r.Context()),
		OrderID:    chi.URLParam(r, "orderID"),
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
