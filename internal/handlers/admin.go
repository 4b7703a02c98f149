package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"fence-shop-backend/internal/auth"
	"fence-shop-backend/internal/configurator"
	"fence-shop-backend/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// POST /api/admin/login
func (e *Env) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := e.Users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		http.Error(w, "неверный email или пароль", http.StatusUnauthorized)
		return
	}
	if err != nil {
		e.writeError(w, err)
		return
	}

	token, exp, err := e.Tokens.Issue(u)
	if err != nil {
		e.writeError(w, err)
		return
	}
	e.writeJSON(w, loginResponse{Token: token, ExpiresAt: exp, User: u})
}

// adminOrderDTO: заказ с человекочитаемым описанием каждой позиции.
type adminOrderDTO struct {
	*domain.Order
	Lines []adminOrderLine `json:"lines"`
}

type adminOrderLine struct {
	domain.OrderLine
	Summary []domain.SummaryItem `json:"summary"`
}

func (e *Env) toAdminOrder(o *domain.Order) adminOrderDTO {
	dto := adminOrderDTO{Order: o, Lines: make([]adminOrderLine, 0, len(o.Lines))}
	for _, l := range o.Lines {
		dto.Lines = append(dto.Lines, adminOrderLine{
			OrderLine: l,
			Summary:   configurator.Summarize(e.Catalog.Family(l.ProductID), l.Config),
		})
	}
	return dto
}

// GET /api/admin/orders?status=new
func (e *Env) HandleAdminOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := domain.OrderStatus(r.URL.Query().Get("status"))
	list, err := e.Orders.List(r.Context(), status)
	if err != nil {
		e.writeError(w, err)
		return
	}

	out := make([]adminOrderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, e.toAdminOrder(o))
	}
	e.writeJSON(w, out)
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// HandleAdminOrderDetail обслуживает:
//
//	GET   /api/admin/orders/{id}: заказ
//	PATCH /api/admin/orders/{id}: смена статуса
func (e *Env) HandleAdminOrderDetail(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/admin/orders/"
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		o, err := e.Orders.Get(r.Context(), id)
		if err != nil {
			e.writeError(w, err)
			return
		}
		e.writeJSON(w, e.toAdminOrder(o))

	case http.MethodPatch:
		var req statusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		o, err := e.Orders.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			e.writeError(w, err)
			return
		}
		e.Metrics.OrderStatusChanged.WithLabelValues(string(o.Status)).Inc()
		e.writeJSON(w, e.toAdminOrder(o))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type passwordRequest struct {
	Password string `json:"password"`
}

// POST /api/admin/users/{id}/password: админ меняет любой пароль,
// менеджер только свой.
func (e *Env) HandleAdminUserPassword(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/admin/users/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")
	if rest == r.URL.Path || len(parts) != 2 || parts[0] == "" || parts[1] != "password" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := parts[0]

	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if claims.Role != domain.RoleAdmin && claims.Subject != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req passwordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := e.Users.SetPassword(r.Context(), userID, req.Password)
	switch {
	case errors.Is(err, auth.ErrWeakPassword):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrUserNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		e.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
