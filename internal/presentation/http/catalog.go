package httppresentation

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appCatalog "github.com/Zhima-Mochi/minishop-cart/internal/application/catalog"
	domainCatalog "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
)

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	Stock       int       `json:"stock"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResponse(p *domainCatalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.uc.ListProducts.Execute(r.Context(), appCatalog.ListProductsInput{
		Category: q.Get("category"),
		Query:    q.Get("q"),
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct.Execute(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.uc.ListCategories.Execute(r.Context(), struct{}{})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}
