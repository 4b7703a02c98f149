package configurator

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"fence-shop-backend/internal/domain"
)

// MaxNoteLength: ограничение на свободный текст, в символах.
const MaxNoteLength = 1000

// Session: настройка одного изделия. Каждый изменяющий вызов синхронно
// пересчитывает совместимость и цену до возврата управления.
// Session не предназначена для использования из нескольких горутин.
type Session struct {
	catalog   *Catalog
	family    *domain.Family
	cfg       domain.Configuration
	available map[string][]domain.Option
	corrected []string
	price     PriceBreakdown
}

// NewSession открывает настройку с опциями по умолчанию.
func (c *Catalog) NewSession(familyID string) (*Session, error) {
	f := c.byID[familyID]
	if f == nil {
		return nil, ErrUnknownFamily
	}
	s := &Session{
		catalog: c,
		family:  f,
		cfg: domain.Configuration{
			FamilyID:   f.ID,
			Variant:    f.DefaultVariant(),
			Selections: map[string]string{},
			Quantity:   1,
		},
	}
	s.refresh()
	return s, nil
}

// Restore восстанавливает сессию из сохранённой конфигурации. Неподдерживаемый
// вариант заменяется вариантом по умолчанию, устаревший выбор исправляется.
func (c *Catalog) Restore(cfg domain.Configuration) (*Session, error) {
	s, err := c.NewSession(cfg.FamilyID)
	if err != nil {
		return nil, err
	}
	if s.family.SupportsVariant(cfg.Variant) {
		s.cfg.Variant = cfg.Variant
	}
	for k, v := range cfg.Selections {
		s.cfg.Selections[k] = v
	}
	if cfg.Height != nil {
		h := *cfg.Height
		s.cfg.Height = &h
	}
	if cfg.Width != nil {
		w := *cfg.Width
		s.cfg.Width = &w
	}
	s.cfg.ColorCode = cleanText(cfg.ColorCode, 32)
	s.cfg.Notes = cleanText(cfg.Notes, MaxNoteLength)
	s.cfg.Quantity = clampQuantity(cfg.Quantity)
	s.refresh()
	return s, nil
}

func (s *Session) refresh() {
	s.cfg.Selections, s.corrected = s.catalog.Reconcile(s.family, s.cfg.Selections)
	s.available = make(map[string][]domain.Option, len(s.family.Categories))
	view := selectionView(s.family, s.cfg.Selections)
	for i := range s.family.Categories {
		cat := &s.family.Categories[i]
		s.available[cat.ID] = s.catalog.available(s.family, cat, view)
	}
	s.price = Explain(s.family.BasePrice, s.family, s.cfg)
}

// Family: семейство, к которому относится настройка.
func (s *Session) Family() *domain.Family { return s.family }

// Configuration: копия текущего состояния.
func (s *Session) Configuration() domain.Configuration { return s.cfg.Clone() }

// Available: допустимые сейчас опции категории.
func (s *Session) Available(category string) []domain.Option {
	opts := s.available[category]
	out := make([]domain.Option, len(opts))
	copy(out, opts)
	return out
}

// Corrected: категории, где последний пересчёт заменил устаревший выбор.
func (s *Session) Corrected() []string {
	return append([]string(nil), s.corrected...)
}

// UnitPrice: текущая цена за штуку.
func (s *Session) UnitPrice() int64 { return s.price.UnitPrice }

// Breakdown: детали последнего расчёта цены.
func (s *Session) Breakdown() PriceBreakdown { return s.price }

// LineTotal: цена с учётом количества.
func (s *Session) LineTotal() int64 { return s.price.UnitPrice * int64(s.cfg.Quantity) }

// SetVariant переключает стандартные размеры и размеры под заказ.
func (s *Session) SetVariant(v domain.Variant) error {
	if !s.family.SupportsVariant(v) {
		return ErrVariantUnsupported
	}
	s.cfg.Variant = v
	s.refresh()
	return nil
}

// Select выбирает опцию. Опция должна быть среди доступных сейчас,
// иначе состояние не меняется.
func (s *Session) Select(category, optionID string) error {
	if s.family.Category(category) == nil {
		return ErrUnknownCategory
	}
	if !containsOption(s.available[category], optionID) {
		return ErrOptionUnavailable
	}
	s.cfg.Selections[category] = optionID
	s.refresh()
	return nil
}

// SetCustomDimension запоминает размер под заказ как есть, без обрезки
// по границам: выход за границы проверяет Validate.
func (s *Session) SetCustomDimension(field domain.Dimension, value float64) {
	v := value
	switch field {
	case domain.DimHeight:
		s.cfg.Height = &v
	case domain.DimWidth:
		s.cfg.Width = &v
	default:
		return
	}
	s.refresh()
}

// SetCustomDimensionText разбирает ввод пользователя. Пустой или
// нечисловой ввод сбрасывает поле.
func (s *Session) SetCustomDimensionText(field domain.Dimension, raw string) {
	raw = strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v == 0 {
		s.ClearCustomDimension(field)
		return
	}
	s.SetCustomDimension(field, v)
}

// ClearCustomDimension сбрасывает размер под заказ.
func (s *Session) ClearCustomDimension(field domain.Dimension) {
	switch field {
	case domain.DimHeight:
		s.cfg.Height = nil
	case domain.DimWidth:
		s.cfg.Width = nil
	default:
		return
	}
	s.refresh()
}

// SetQuantity: количество от 1 до domain.MaxQuantity, ошибок не бывает.
func (s *Session) SetQuantity(n int) {
	s.cfg.Quantity = clampQuantity(n)
	s.refresh()
}

// SetQuantityText: то же для сырого ввода: "abc" и "-5" дают 1.
func (s *Session) SetQuantityText(raw string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 1
	}
	s.SetQuantity(n)
}

// SetNote: примечание к заказу (монтаж, доставка).
func (s *Session) SetNote(text string) {
	s.cfg.Notes = cleanText(text, MaxNoteLength)
	s.refresh()
}

// SetColorCode: код цвета для опции «любой цвет по RAL».
func (s *Session) SetColorCode(code string) {
	s.cfg.ColorCode = cleanText(code, 32)
	s.refresh()
}

// IsValid: можно ли положить изделие в корзину.
func (s *Session) IsValid() bool {
	return s.Validate() == nil
}

// Validate возвращает первую найденную ошибку ввода или nil.
func (s *Session) Validate() error {
	for _, cat := range s.family.Categories {
		if len(s.available[cat.ID]) == 0 {
			return newValidationError(cat.ID, "нет доступных вариантов для «%s»", cat.Label)
		}
	}
	return validateConfiguration(s.family, s.cfg)
}

// validateConfiguration: общая проверка для сессии и сборщика позиций.
func validateConfiguration(f *domain.Family, cfg domain.Configuration) error {
	if f == nil {
		return ErrUnknownFamily
	}
	if cfg.FamilyID != "" && cfg.FamilyID != f.ID {
		return ErrUnknownFamily
	}
	if !f.SupportsVariant(cfg.Variant) {
		return newValidationError("variant", "исполнение недоступно для «%s»", f.Name)
	}
	if cfg.Variant != domain.VariantCustom {
		return nil
	}
	if err := checkDimension("height", "высоту", cfg.Height, f.HeightBounds); err != nil {
		return err
	}
	return checkDimension("width", "ширину", cfg.Width, f.WidthBounds)
}

func checkDimension(field, what string, v *float64, b domain.Bounds) error {
	if v == nil || *v == 0 {
		return newValidationError(field, "укажите %s", what)
	}
	if !b.Contains(*v) {
		return newValidationError(field, "укажите %s от %g до %g см", what, b.Min, b.Max)
	}
	return nil
}

func clampQuantity(n int) int { return domain.ClampQuantity(n) }

func cleanText(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit]))
}
