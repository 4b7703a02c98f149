package handlers

import (
	"net/http"
	"strings"

	"fence-shop-backend/internal/configurator"
	"fence-shop-backend/internal/domain"
)

type familyBrief struct {
	ID          string            `json:"id"`
	Kind        domain.FamilyKind `json:"kind"`
	Name        string            `json:"name"`
	Series      string            `json:"series"`
	Description string            `json:"description,omitempty"`
	BasePrice   int64             `json:"basePrice"`
	Variants    []domain.Variant  `json:"variants"`
}

// GET /api/families: список семейств для витрины
func (e *Env) HandleFamilies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	families := e.Catalog.Families()
	list := make([]familyBrief, 0, len(families))
	for _, f := range families {
		list = append(list, familyBrief{
			ID:          f.ID,
			Kind:        f.Kind,
			Name:        f.Name,
			Series:      f.Series,
			Description: f.Description,
			BasePrice:   f.BasePrice,
			Variants:    f.Variants,
		})
	}
	e.writeJSON(w, list)
}

// GET /api/families/{id}: полное описание семейства и стартовая настройка
func (e *Env) HandleFamilyDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/families/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	s, err := e.Catalog.NewSession(id)
	if err != nil {
		e.writeError(w, err)
		return
	}

	e.writeJSON(w, struct {
		Family *domain.Family `json:"family"`
		Quote  quoteResponse  `json:"quote"`
	}{
		Family: s.Family(),
		Quote:  newQuoteResponse(s),
	})
}

type quoteResponse struct {
	Configuration domain.Configuration        `json:"configuration"`
	Available     map[string][]domain.Option  `json:"available"`
	Corrected     []string                    `json:"corrected"`
	Price         configurator.PriceBreakdown `json:"price"`
	UnitPrice     int64                       `json:"unitPrice"`
	LineTotal     int64                       `json:"lineTotal"`
	Valid         bool                        `json:"valid"`
	Error         *errorResponse              `json:"error,omitempty"`
	Render        map[string]string           `json:"render"`
}

func newQuoteResponse(s *configurator.Session) quoteResponse {
	f := s.Family()
	avail := make(map[string][]domain.Option, len(f.Categories))
	for _, cat := range f.Categories {
		avail[cat.ID] = s.Available(cat.ID)
	}

	resp := quoteResponse{
		Configuration: s.Configuration(),
		Available:     avail,
		Corrected:     s.Corrected(),
		Price:         s.Breakdown(),
		UnitPrice:     s.UnitPrice(),
		LineTotal:     s.LineTotal(),
		Valid:         true,
		Render:        s.RenderParams(),
	}
	if resp.Corrected == nil {
		resp.Corrected = []string{}
	}
	if err := s.Validate(); err != nil {
		resp.Valid = false
		resp.Error = &errorResponse{Error: err.Error()}
		if ve := asValidation(err); ve != nil {
			resp.Error = &errorResponse{Error: ve.Message, Field: ve.Field}
		}
	}
	return resp
}

// POST /api/quote: пересчёт совместимости и цены для конфигурации
func (e *Env) HandleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cfg domain.Configuration
	if !decodeJSON(w, r, &cfg) {
		return
	}

	s, err := e.Catalog.Restore(cfg)
	if err != nil {
		e.writeError(w, err)
		return
	}

	resp := newQuoteResponse(s)
	e.Metrics.Quotes.WithLabelValues(s.Family().ID).Inc()
	e.Metrics.QuotedPrice.Observe(float64(resp.UnitPrice))
	e.writeJSON(w, resp)
}
