package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/orders"
)

type OrderHandler struct {
	orders *orders.Manager
	logger *slog.Logger
}

func NewOrderHandler(orders *orders.Manager, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type createOrderRequest struct {
	UserID          string                 `json:"userId"`
	Items           []domain.OrderItem     `json:"items"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.Create(r.Context(), orders.CreateInput{
		UserID:          req.UserID,
		Items:           req.Items,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("order created", "order_id", o.ID, "user_id", o.UserID, "total", o.TotalAmount)
	writeJSON(w, h.logger, http.StatusCreated, o)
}

func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var list []domain.Order
	if userID := r.URL.Query().Get("userId"); userID != "" {
		list = h.orders.ByUser(userID)
	} else {
		list = h.orders.All()
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, o)
}

type updateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *OrderHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("order status updated", "order_id", o.ID, "status", o.Status)
	writeJSON(w, h.logger, http.StatusOK, o)
}

type paymentRequest struct {
	Method string `json:"method"`
}

func (h *OrderHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.ProcessPayment(r.Context(), r.PathValue("id"), orders.PaymentInput{Method: req.Method})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("payment processed", "order_id", o.ID, "method", o.PaymentMethod)
	writeJSON(w, h.logger, http.StatusOK, o)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.Cancel(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, o)
}

func (h *OrderHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.orders.Stats())
}
