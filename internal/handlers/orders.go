package handlers

import (
	"log"
	"net/http"

	"fence-shop-backend/internal/domain"
)

type submitOrderRequest struct {
	Customer domain.Customer `json:"customer"`
}

type submitOrderResponse struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Total  int64  `json:"total"`
}

// POST /api/orders: оформить заказ из корзины X-Cart-ID
func (e *Env) HandleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if e.OrderLimiter != nil && !e.OrderLimiter.Allow(clientIP(r)) {
		w.Header().Set("Retry-After", "60")
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	id, ok := cartID(w, r, false)
	if !ok {
		return
	}
	if id == "" {
		http.Error(w, "missing "+CartHeader, http.StatusBadRequest)
		return
	}

	var req submitOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := e.Carts.Open(r.Context(), id)
	if err != nil {
		e.writeError(w, err)
		return
	}

	order, err := e.Orders.Submit(r.Context(), req.Customer, c.Lines())
	if err != nil {
		e.Metrics.OrdersFailed.Inc()
		e.writeError(w, err)
		return
	}
	e.Metrics.OrdersSubmitted.Inc()

	// заказ уже сохранён: несохранённая очистка корзины не повод для ошибки
	if err := e.persisted(c.Clear(r.Context())); err != nil {
		log.Printf("order %s: clear cart %s: %v", order.Number, id, err)
	}

	e.writeJSONStatus(w, http.StatusCreated, submitOrderResponse{
		ID:     order.ID,
		Number: order.Number,
		Total:  order.Total,
	})
}
