package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/order-service/internal/orders"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// OrderService is the lookup surface the handlers depend on.
type OrderService interface {
	Get(ctx context.Context, id string) (orders.Order, error)
	List(ctx context.Context) ([]orders.Order, error)
}

// Handler wires the order service into HTTP handlers.
type Handler struct {
	orders      OrderService
	appName     string
	environment string

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithIdentity sets the application name and environment reported by the root endpoint.
func WithIdentity(appName, environment string) HandlerOption {
	return func(h *Handler) {
		h.appName = appName
		h.environment = environment
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(svc OrderService, opts ...HandlerOption) *Handler {
	h := &Handler{
		orders:      svc,
		appName:     "Order Service API",
		environment: "local",
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	resp := rootResponse{
		Message: fmt.Sprintf("Welcome to the %s - %s", h.appName, h.environment),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "OK",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.Context())
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "order id is required")
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", "Order not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Service unavailable", "request cancelled before the lookup completed")
	default:
		writeInternalError(w, err)
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type rootResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, errorResponse{
		Error:  message,
		Detail: detail,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
