package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fence-shop-backend/internal/cart"
	"fence-shop-backend/internal/domain"
)

// CartHeader: идентификатор корзины покупателя, выдаётся сервером.
const CartHeader = "X-Cart-ID"

type cartResponse struct {
	CartID string            `json:"cartId"`
	Lines  []domain.CartLine `json:"lines"`
	Total  int64             `json:"total"`
	// Saved = false: изменение применено, но не сохранено в хранилище.
	Saved bool `json:"saved"`
}

// cartID берёт id из заголовка. Если его нет и create = true, выдаёт новый.
func cartID(w http.ResponseWriter, r *http.Request, create bool) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(CartHeader))
	if id == "" {
		if !create {
			return "", true
		}
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "bad cart id", http.StatusBadRequest)
		return "", false
	}
	w.Header().Set(CartHeader, id)
	return id, true
}

func (e *Env) writeCart(w http.ResponseWriter, status int, id string, c *cart.Service, persistErr error) {
	lines := c.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	e.writeJSONStatus(w, status, cartResponse{
		CartID: id,
		Lines:  lines,
		Total:  c.Total(),
		Saved:  persistErr == nil,
	})
}

// HandleCart обслуживает:
//
//	GET    /api/cart: содержимое корзины
//	DELETE /api/cart: очистить корзину
func (e *Env) HandleCart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodDelete:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := cartID(w, r, false)
	if !ok {
		return
	}
	if id == "" {
		e.writeJSON(w, cartResponse{Lines: []domain.CartLine{}, Saved: true})
		return
	}

	c, err := e.Carts.Open(r.Context(), id)
	if err != nil {
		e.writeError(w, err)
		return
	}

	var persistErr error
	if r.Method == http.MethodDelete {
		persistErr = e.persisted(c.Clear(r.Context()))
		if persistErr != nil && !cart.IsPersist(persistErr) {
			e.writeError(w, persistErr)
			return
		}
	}
	e.writeCart(w, http.StatusOK, id, c, persistErr)
}

// persisted считает неудачные сохранения и пропускает ошибку дальше.
func (e *Env) persisted(err error) error {
	if cart.IsPersist(err) {
		e.Metrics.CartPersistFailed.Inc()
	}
	return err
}

// HandleCartLines обслуживает:
//
//	POST   /api/cart/lines      : добавить настроенное изделие
//	PATCH  /api/cart/lines/{id} : изменить количество
//	DELETE /api/cart/lines/{id} : удалить позицию
func (e *Env) HandleCartLines(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/cart/lines"), "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		e.handleCartAdd(w, r)
	case rest != "" && !strings.Contains(rest, "/") && (r.Method == http.MethodPatch || r.Method == http.MethodDelete):
		e.handleCartLine(w, r, rest)
	case rest != "" && strings.Contains(rest, "/"):
		http.NotFound(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (e *Env) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var cfg domain.Configuration
	if !decodeJSON(w, r, &cfg) {
		return
	}

	s, err := e.Catalog.Restore(cfg)
	if err != nil {
		e.writeError(w, err)
		return
	}
	// покупатель должен видеть ту конфигурацию, которую покупает
	if corrected := s.Corrected(); len(corrected) > 0 {
		e.writeJSONStatus(w, http.StatusConflict, struct {
			Error string        `json:"error"`
			Quote quoteResponse `json:"quote"`
		}{
			Error: "выбор изменился: " + strings.Join(corrected, ", "),
			Quote: newQuoteResponse(s),
		})
		return
	}

	line, err := e.Lines.FromSession(s)
	if err != nil {
		var field string
		if ve := asValidation(err); ve != nil {
			field = ve.Field
		}
		e.Metrics.ValidationRejected.WithLabelValues(field).Inc()
		e.writeError(w, err)
		return
	}

	id, ok := cartID(w, r, true)
	if !ok {
		return
	}
	c, err := e.Carts.Open(r.Context(), id)
	if err != nil {
		e.writeError(w, err)
		return
	}

	persistErr := e.persisted(c.Add(r.Context(), line))
	if persistErr != nil && !cart.IsPersist(persistErr) {
		e.writeError(w, persistErr)
		return
	}
	e.Metrics.CartLinesAdded.WithLabelValues(line.ProductID).Inc()
	e.writeCart(w, http.StatusCreated, id, c, persistErr)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (e *Env) handleCartLine(w http.ResponseWriter, r *http.Request, lineID string) {
	id, ok := cartID(w, r, false)
	if !ok {
		return
	}
	if id == "" {
		http.Error(w, "missing "+CartHeader, http.StatusBadRequest)
		return
	}

	c, err := e.Carts.Open(r.Context(), id)
	if err != nil {
		e.writeError(w, err)
		return
	}

	var opErr error
	if r.Method == http.MethodPatch {
		var req quantityRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		opErr = c.UpdateQuantity(r.Context(), lineID, req.Quantity)
	} else {
		opErr = c.Remove(r.Context(), lineID)
	}

	opErr = e.persisted(opErr)
	if opErr != nil && !cart.IsPersist(opErr) {
		e.writeError(w, opErr)
		return
	}
	e.writeCart(w, http.StatusOK, id, c, opErr)
}
