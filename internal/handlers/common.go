// internal/handlers/common.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"fence-shop-backend/internal/cart"
	"fence-shop-backend/internal/configurator"
	"fence-shop-backend/internal/domain"
	"fence-shop-backend/internal/metrics"
	"fence-shop-backend/internal/orders"
)

// UserStore: учётные записи сотрудников.
type UserStore interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	SetPassword(ctx context.Context, id, password string) error
}

// TokenIssuer выпускает токены админки.
type TokenIssuer interface {
	Issue(u *domain.User) (string, time.Time, error)
}

// Pinger: проверка живости БД для /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Env хранит зависимости для хендлеров.
type Env struct {
	Catalog *configurator.Catalog
	Lines   *configurator.LineBuilder
	Carts   *cart.Registry
	Orders  *orders.Service

	Users  UserStore
	Tokens TokenIssuer

	Metrics      *metrics.Registry
	OrderLimiter *Limiter
	DB           Pinger
}

// writeJSON: простой helper для JSON-ответов
func (e *Env) writeJSON(w http.ResponseWriter, v interface{}) {
	e.writeJSONStatus(w, http.StatusOK, v)
}

func (e *Env) writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError переводит ошибки слоёв в HTTP-статусы.
func (e *Env) writeError(w http.ResponseWriter, err error) {
	ve := asValidation(err)
	switch {
	case ve != nil:
		e.writeJSONStatus(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case orders.IsValidation(err):
		e.writeJSONStatus(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, configurator.ErrUnknownFamily),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, orders.ErrNotFound):
		e.writeJSONStatus(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, cart.ErrTooLarge):
		e.writeJSONStatus(w, http.StatusBadRequest, errorResponse{Error: "сумма позиции слишком велика"})
	case errors.Is(err, configurator.ErrUnknownCategory),
		errors.Is(err, configurator.ErrOptionUnavailable),
		errors.Is(err, configurator.ErrVariantUnsupported):
		e.writeJSONStatus(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Printf("handler error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func asValidation(err error) *configurator.ValidationError {
	var ve *configurator.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// decodeJSON читает тело запроса; при ошибке сам отвечает 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// GET /healthz
func (e *Env) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if e.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := e.DB.PingContext(ctx); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	e.writeJSON(w, map[string]string{"status": "ok"})
}
