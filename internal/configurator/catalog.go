// Package configurator содержит движок настройки и расчёта цены изделий.
// Сюда входят каталог опций, совместимость, состояние настройки и цена позиции.
package configurator

import (
	"fmt"

	"fence-shop-backend/internal/domain"
)

// Catalog: неизменяемый набор семейств с скомпилированными условиями.
// Безопасен для одновременного чтения из разных сессий.
type Catalog struct {
	families []*domain.Family
	byID     map[string]*domain.Family
	preds    *predicates
}

// NewCatalog проверяет описания семейств и компилирует CEL-условия опций.
func NewCatalog(families []*domain.Family) (*Catalog, error) {
	preds, err := newPredicates()
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		families: families,
		byID:     make(map[string]*domain.Family, len(families)),
		preds:    preds,
	}

	for _, f := range families {
		if f == nil {
			continue
		}
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate family %q", f.ID)
		}
		for _, cat := range f.Categories {
			for _, o := range cat.Options {
				if o.When == "" {
					continue
				}
				if err := preds.compile(o.When); err != nil {
					return nil, fmt.Errorf("family %s: option %s.%s: %w", f.ID, cat.ID, o.ID, err)
				}
			}
		}
		c.byID[f.ID] = f
	}
	return c, nil
}

// Families: все семейства в порядке объявления.
func (c *Catalog) Families() []*domain.Family {
	out := make([]*domain.Family, 0, len(c.families))
	for _, f := range c.families {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Family ищет семейство по id, nil если нет.
func (c *Catalog) Family(id string) *domain.Family {
	return c.byID[id]
}

// Options: полный список опций категории без учёта совместимости.
// Для неизвестного семейства или категории список пуст.
func (c *Catalog) Options(familyID, category string) []domain.Option {
	f := c.byID[familyID]
	if f == nil {
		return []domain.Option{}
	}
	cat := f.Category(category)
	if cat == nil {
		return []domain.Option{}
	}
	out := make([]domain.Option, len(cat.Options))
	copy(out, cat.Options)
	return out
}
