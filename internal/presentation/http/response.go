package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	appCart "github.com/Zhima-Mochi/minishop-cart/internal/application/cart"
	domainCatalog "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	domainOrder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"
	"github.com/Zhima-Mochi/minishop-cart/internal/pkg/validation"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("http: malformed request body")

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// decodeJSON reads a bounded body into dst and runs the validation tags on it.
// An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return validation.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := errorResponse{Error: err.Error()}
	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainOrder.ErrNotFound),
		errors.Is(err, domainCatalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, appCart.ErrQuantityAboveStock),
		errors.Is(err, appCart.ErrEmptyCart),
		errors.Is(err, appCart.ErrInvalidShipping):
		return http.StatusBadRequest
	case errors.Is(err, appCart.ErrCheckoutInProgress),
		errors.Is(err, appCart.ErrDuplicateSubmission),
		errors.Is(err, domainCatalog.ErrOutOfStock),
		errors.Is(err, domainOrder.ErrInvalidStateTransition),
		errors.Is(err, domainOrder.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, appCart.ErrStockUpdate),
		errors.Is(err, appCart.ErrOrderPlacement):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logctx.FromOr(ctx, observability.NopLogger()).Error("http_request_failed",
			observability.F("status", status),
			observability.F("error", err.Error()),
		)
	}
	writeError(w, status, err)
}
