package configurator

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"fence-shop-backend/internal/domain"
)

// LineBuilder собирает позиции корзины. NewID и Now подменяются в тестах.
type LineBuilder struct {
	NewID func() string
	Now   func() time.Time
}

// NewLineBuilder: сборщик с uuid и системными часами.
func NewLineBuilder() *LineBuilder {
	return &LineBuilder{
		NewID: uuid.NewString,
		Now:   time.Now,
	}
}

// FromSession собирает позицию из сессии по её текущей цене.
func (b *LineBuilder) FromSession(s *Session) (domain.CartLine, error) {
	if err := s.Validate(); err != nil {
		return domain.CartLine{}, err
	}
	return b.BuildLine(s.Configuration(), s.Family(), s.UnitPrice())
}

// BuildLine фиксирует конфигурацию и цену в новой позиции корзины.
// Для недопустимой конфигурации позиция не создаётся.
func (b *LineBuilder) BuildLine(cfg domain.Configuration, f *domain.Family, unitPrice int64) (domain.CartLine, error) {
	if err := validateConfiguration(f, cfg); err != nil {
		return domain.CartLine{}, err
	}

	snapshot := cfg.Clone()
	snapshot.FamilyID = f.ID
	snapshot.Quantity = clampQuantity(cfg.Quantity)

	widthMM, heightLabel := sizeLabels(f, snapshot)

	return domain.CartLine{
		ID:          b.NewID(),
		ProductID:   f.ID,
		Name:        f.Name,
		Series:      f.Series,
		UnitPrice:   unitPrice,
		Quantity:    snapshot.Quantity,
		WidthMM:     widthMM,
		HeightLabel: heightLabel,
		Summary:     describe(f, snapshot),
		Config:      snapshot,
		CreatedAt:   b.Now().UTC(),
	}, nil
}

// sizeLabels: ширина в мм и подпись высоты для стандартного и
// заказного исполнения.
func sizeLabels(f *domain.Family, cfg domain.Configuration) (int, string) {
	if cfg.Variant == domain.VariantCustom {
		var widthMM int
		var label string
		if cfg.Width != nil {
			widthMM = int(*cfg.Width*10 + 0.5)
		}
		if cfg.Height != nil {
			label = strconv.FormatFloat(*cfg.Height, 'f', -1, 64) + " см (под заказ)"
		}
		return widthMM, label
	}

	var widthMM int
	var label string
	if cat := f.CategoryByRole(domain.RoleWidth); cat != nil {
		if o, ok := cat.Option(cfg.Selections[cat.ID]); ok {
			widthMM = int(o.Value*10 + 0.5)
		}
	}
	if cat := f.CategoryByRole(domain.RoleHeight); cat != nil {
		id := cfg.Selections[cat.ID]
		label = id
		if o, ok := cat.Option(id); ok {
			label = o.Label
		}
	}
	return widthMM, label
}

// describe: человекочитаемые строки для всех выбранных категорий
// в порядке каталога, затем размеры под заказ и свободный текст.
func describe(f *domain.Family, cfg domain.Configuration) []domain.SummaryItem {
	items := make([]domain.SummaryItem, 0, len(f.Categories)+4)
	items = append(items, domain.SummaryItem{
		Key:   "variant",
		Label: "Исполнение",
		Value: variantLabel(cfg.Variant),
		Raw:   string(cfg.Variant),
	})

	for _, cat := range f.Categories {
		id, ok := cfg.Selections[cat.ID]
		if !ok {
			continue
		}
		if cfg.Variant == domain.VariantCustom && (cat.Role == domain.RoleHeight || cat.Role == domain.RoleWidth) {
			continue
		}
		items = append(items, domain.SummaryItem{
			Key:   cat.ID,
			Label: cat.Label,
			Value: optionLabel(&cat, id),
			Raw:   id,
		})
	}

	if cfg.Variant == domain.VariantCustom {
		if cfg.Height != nil {
			items = append(items, dimensionItem("height", "Высота", *cfg.Height))
		}
		if cfg.Width != nil {
			items = append(items, dimensionItem("width", "Ширина", *cfg.Width))
		}
	}
	if cfg.ColorCode != "" {
		items = append(items, domain.SummaryItem{Key: "colorCode", Label: "Код цвета", Value: cfg.ColorCode, Raw: cfg.ColorCode})
	}
	if cfg.Notes != "" {
		items = append(items, domain.SummaryItem{Key: "notes", Label: "Примечание", Value: cfg.Notes, Raw: cfg.Notes})
	}
	return items
}

func optionLabel(cat *domain.Category, id string) string {
	if cat == nil {
		return id
	}
	if o, ok := cat.Option(id); ok && o.Label != "" {
		return o.Label
	}
	return id
}

func dimensionItem(key, label string, v float64) domain.SummaryItem {
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	return domain.SummaryItem{Key: key, Label: label, Value: fmt.Sprintf("%s см", raw), Raw: raw}
}

func variantLabel(v domain.Variant) string {
	switch v {
	case domain.VariantStandard:
		return "Стандартные размеры"
	case domain.VariantCustom:
		return "Размеры под заказ"
	}
	return string(v)
}
