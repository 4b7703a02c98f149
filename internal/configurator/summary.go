package configurator

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"fence-shop-backend/internal/domain"
)

// Summarize строит описание сохранённой конфигурации для админки.
// f может быть nil (семейство удалено из каталога). Поля, которых движок
// не знает, выводятся как есть, ошибок не бывает.
func Summarize(f *domain.Family, config map[string]json.RawMessage) []domain.SummaryItem {
	var items []domain.SummaryItem
	known := map[string]bool{"familyId": true, "quantity": true}

	var variant domain.Variant
	if raw, ok := config["variant"]; ok {
		known["variant"] = true
		variant = domain.Variant(rawString(raw))
		items = append(items, domain.SummaryItem{Key: "variant", Label: "Исполнение", Value: variantLabel(variant), Raw: string(variant)})
	}

	if raw, ok := config["selections"]; ok {
		var sel map[string]string
		if err := json.Unmarshal(raw, &sel); err == nil {
			known["selections"] = true
			if variant == domain.VariantCustom && f != nil {
				// стандартные размеры в заказном исполнении не действуют
				for _, role := range []domain.CategoryRole{domain.RoleHeight, domain.RoleWidth} {
					if cat := f.CategoryByRole(role); cat != nil {
						delete(sel, cat.ID)
					}
				}
			}
			items = append(items, describeSelections(f, sel)...)
		}
	}

	for _, d := range []struct{ key, label string }{{"height", "Высота"}, {"width", "Ширина"}} {
		raw, ok := config[d.key]
		if !ok {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil {
			known[d.key] = true
			items = append(items, dimensionItem(d.key, d.label, v))
		}
	}

	for _, t := range []struct{ key, label string }{{"colorCode", "Код цвета"}, {"notes", "Примечание"}} {
		raw, ok := config[t.key]
		if !ok {
			continue
		}
		known[t.key] = true
		if v := rawString(raw); v != "" {
			items = append(items, domain.SummaryItem{Key: t.key, Label: t.label, Value: v, Raw: v})
		}
	}

	extra := make([]string, 0)
	for k := range config {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		v := rawString(config[k])
		items = append(items, domain.SummaryItem{Key: k, Label: k, Value: v, Raw: v})
	}
	return items
}

// describeSelections: сначала категории каталога по порядку, потом
// неизвестные ключи по алфавиту.
func describeSelections(f *domain.Family, sel map[string]string) []domain.SummaryItem {
	var items []domain.SummaryItem
	seen := make(map[string]bool, len(sel))
	if f != nil {
		for i := range f.Categories {
			cat := &f.Categories[i]
			id, ok := sel[cat.ID]
			if !ok {
				continue
			}
			seen[cat.ID] = true
			items = append(items, domain.SummaryItem{Key: cat.ID, Label: cat.Label, Value: optionLabel(cat, id), Raw: id})
		}
	}
	rest := make([]string, 0, len(sel))
	for k := range sel {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		items = append(items, domain.SummaryItem{Key: k, Label: k, Value: sel[k], Raw: sel[k]})
	}
	return items
}

// rawString: строка без кавычек, остальное компактным JSON.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
