package configurator

import (
	"fence-shop-backend/internal/domain"
)

// Available: опции категории, допустимые при текущем выборе в остальных.
// Пока каталог категории не пуст, результат тоже не пуст.
func (c *Catalog) Available(familyID, category string, selections map[string]string) []domain.Option {
	f := c.byID[familyID]
	if f == nil {
		return []domain.Option{}
	}
	cat := f.Category(category)
	if cat == nil {
		return []domain.Option{}
	}
	return c.available(f, cat, selectionView(f, selections))
}

// available применяет правила по порядку объявления. Правило, которое
// оставило бы пустой список, пропускается; так же с CEL-условиями.
func (c *Catalog) available(f *domain.Family, cat *domain.Category, sel map[string]string) []domain.Option {
	current := cat.Options

	for _, rule := range cat.Rules {
		allowed, ok := rule.Allowed[sel[rule.Driver]]
		if !ok {
			continue
		}
		set := make(map[string]bool, len(allowed))
		for _, id := range allowed {
			set[id] = true
		}
		next := make([]domain.Option, 0, len(current))
		for _, o := range current {
			if set[o.ID] {
				next = append(next, o)
			}
		}
		if len(next) > 0 {
			current = next
		}
	}

	next := make([]domain.Option, 0, len(current))
	for _, o := range current {
		if o.When == "" || c.preds.allows(o.When, sel) {
			next = append(next, o)
		}
	}
	if len(next) > 0 {
		current = next
	}

	out := make([]domain.Option, len(current))
	copy(out, current)
	return out
}

// Reconcile приводит выбор к согласованному состоянию: неизвестные ключи
// отбрасываются, пустые и устаревшие значения заменяются первой доступной
// опцией. Возвращает новую карту и категории, где выбор был исправлен.
func (c *Catalog) Reconcile(f *domain.Family, selections map[string]string) (map[string]string, []string) {
	out := make(map[string]string, len(f.Categories))
	for _, cat := range f.Categories {
		if v, ok := selections[cat.ID]; ok && v != "" {
			out[cat.ID] = v
		}
	}

	var corrected []string
	touched := make(map[string]bool)

	// Правила ссылаются только на более ранние категории, но CEL-условия
	// могут смотреть куда угодно, поэтому крутим до неподвижной точки.
	for pass := 0; pass <= len(f.Categories); pass++ {
		changed := false
		for i := range f.Categories {
			cat := &f.Categories[i]
			avail := c.available(f, cat, selectionView(f, out))
			if len(avail) == 0 {
				if _, ok := out[cat.ID]; ok {
					delete(out, cat.ID)
					changed = true
				}
				continue
			}
			cur, ok := out[cat.ID]
			if ok && containsOption(avail, cur) {
				continue
			}
			if ok && !touched[cat.ID] {
				touched[cat.ID] = true
				corrected = append(corrected, cat.ID)
			}
			out[cat.ID] = avail[0].ID
			changed = true
		}
		if !changed {
			break
		}
	}
	return out, corrected
}

// selectionView: выбор со всеми категориями семейства, пустая строка
// для невыбранных, чтобы CEL не падал на отсутствующем ключе.
func selectionView(f *domain.Family, selections map[string]string) map[string]string {
	view := make(map[string]string, len(f.Categories))
	for _, cat := range f.Categories {
		view[cat.ID] = selections[cat.ID]
	}
	return view
}

func containsOption(opts []domain.Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
