package configurator

import (
	"strconv"

	"fence-shop-backend/internal/domain"
)

// RenderParams: плоский набор параметров для 3D-превью. Рендер только
// читает их, на цену и проверку они не влияют.
func RenderParams(f *domain.Family, cfg domain.Configuration) map[string]string {
	params := map[string]string{
		"family":  f.ID,
		"kind":    string(f.Kind),
		"variant": string(cfg.Variant),
	}

	h, w := pricedDimensions(f, cfg)
	params["height"] = strconv.FormatFloat(h, 'f', -1, 64)
	params["width"] = strconv.FormatFloat(w, 'f', -1, 64)

	for i := range f.Categories {
		cat := &f.Categories[i]
		id, ok := cfg.Selections[cat.ID]
		if !ok {
			continue
		}
		params[cat.ID] = id

		o, found := cat.Option(id)
		if !found {
			continue
		}
		switch cat.Role {
		case domain.RoleColor:
			if o.Custom && cfg.ColorCode != "" {
				params["colorValue"] = "RAL " + cfg.ColorCode
			} else if o.Swatch != "" {
				params["colorValue"] = o.Swatch
			}
		case domain.RolePattern:
			if o.Texture != "" {
				params["texture"] = o.Texture
			}
		}
	}
	return params
}

// RenderParams для текущего состояния сессии.
func (s *Session) RenderParams() map[string]string {
	return RenderParams(s.family, s.cfg)
}
