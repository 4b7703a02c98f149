package configurator

import (
	"math"

	"fence-shop-backend/internal/domain"
)

// PriceBreakdown: промежуточные значения расчёта, для отладки и API.
type PriceBreakdown struct {
	BasePrice    int64   `json:"basePrice"`
	OptionFactor float64 `json:"optionFactor"`
	SizeFactor   float64 `json:"sizeFactor"`
	ColorFactor  float64 `json:"colorFactor"`
	Factor       float64 `json:"factor"`
	Rounded      int64   `json:"rounded"`
	Surcharges   int64   `json:"surcharges"`
	UnitPrice    int64   `json:"unitPrice"`
	Floored      bool    `json:"floored"`
}

// ComputeUnitPrice: цена за штуку. Чистая функция, не паникует.
func ComputeUnitPrice(basePrice int64, f *domain.Family, cfg domain.Configuration) int64 {
	return Explain(basePrice, f, cfg).UnitPrice
}

// Explain считает цену строго в таком порядке: множители опций, надбавка
// за размер, надбавка за произвольный цвет, округление до шага семейства,
// фиксированные надбавки, нижняя граница = базовая цена.
func Explain(basePrice int64, f *domain.Family, cfg domain.Configuration) PriceBreakdown {
	b := PriceBreakdown{
		BasePrice:    basePrice,
		OptionFactor: 1.0,
		SizeFactor:   1.0,
		ColorFactor:  1.0,
	}
	if f == nil {
		b.Factor = 1.0
		b.Rounded = basePrice
		b.UnitPrice = basePrice
		return b
	}

	for i := range f.Categories {
		cat := &f.Categories[i]
		if cat.Pricing != domain.PricingFactor {
			continue
		}
		o, ok := cat.Option(cfg.Selections[cat.ID])
		if !ok {
			continue
		}
		b.OptionFactor *= o.EffectiveFactor()
	}

	if cfg.Variant == domain.VariantCustom || f.Pricing.SizeScaling == domain.ScaleAlways {
		h, w := pricedDimensions(f, cfg)
		area := 0.5*(h/f.Pricing.BaselineHeight) + 0.5*(w/f.Pricing.BaselineWidth)
		b.SizeFactor = 1 + area*f.Pricing.CustomRate
	}

	if color := f.CategoryByRole(domain.RoleColor); color != nil {
		if o, ok := color.Option(cfg.Selections[color.ID]); ok && o.Custom && f.Pricing.CustomColorPremium > 0 {
			b.ColorFactor = f.Pricing.CustomColorPremium
		}
	}

	b.Factor = b.OptionFactor * b.SizeFactor * b.ColorFactor

	step := float64(f.RoundStep())
	price := math.Round(float64(basePrice)*b.Factor/step) * step

	var surcharges int64
	for i := range f.Categories {
		cat := &f.Categories[i]
		if cat.Pricing != domain.PricingSurcharge {
			continue
		}
		if o, ok := cat.Option(cfg.Selections[cat.ID]); ok {
			surcharges += o.Surcharge
		}
	}
	b.Surcharges = surcharges

	total := price + float64(surcharges)
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 || total > math.MaxInt64/2 {
		b.Floored = true
		b.Rounded = basePrice
		b.UnitPrice = basePrice
		return b
	}
	b.Rounded = int64(price)
	b.UnitPrice = int64(total)
	return b
}

// pricedDimensions: размеры, от которых считается надбавка. Для custom
// берутся введённые значения, иначе значения выбранных стандартных опций.
// Если чего-то нет, подставляется базовый размер.
func pricedDimensions(f *domain.Family, cfg domain.Configuration) (float64, float64) {
	h, w := f.Pricing.BaselineHeight, f.Pricing.BaselineWidth

	if cfg.Variant == domain.VariantCustom {
		if cfg.Height != nil {
			h = *cfg.Height
		}
		if cfg.Width != nil {
			w = *cfg.Width
		}
		return h, w
	}

	if cat := f.CategoryByRole(domain.RoleHeight); cat != nil {
		if o, ok := cat.Option(cfg.Selections[cat.ID]); ok && o.Value > 0 {
			h = o.Value
		}
	}
	if cat := f.CategoryByRole(domain.RoleWidth); cat != nil {
		if o, ok := cat.Option(cfg.Selections[cat.ID]); ok && o.Value > 0 {
			w = o.Value
		}
	}
	return h, w
}
