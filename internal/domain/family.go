package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FamilyKind: тип изделия. Движок общий, отличаются только данные.
type FamilyKind string

const (
	KindVerticalProfile FamilyKind = "vertical_profile"
	KindPanel           FamilyKind = "panel"
	KindCanopy          FamilyKind = "canopy"
)

// Variant: стандартные размеры из каталога или размеры под заказ.
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantCustom   Variant = "custom"
)

// SizeScaling: когда применяется надбавка за размер.
type SizeScaling string

const (
	ScaleCustomOnly SizeScaling = "custom"
	ScaleAlways     SizeScaling = "always"
)

// Bounds: допустимый диапазон для размера под заказ, в см.
type Bounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains проверяет попадание в диапазон (границы включительно).
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Pricing: числовые константы формулы конкретного семейства.
type Pricing struct {
	BaselineHeight     float64     `json:"baselineHeight" yaml:"baseline_height"`
	BaselineWidth      float64     `json:"baselineWidth" yaml:"baseline_width"`
	CustomRate         float64     `json:"customRate" yaml:"custom_rate"`
	SizeScaling        SizeScaling `json:"sizeScaling" yaml:"size_scaling"`
	CustomColorPremium float64     `json:"customColorPremium" yaml:"custom_color_premium"`
	RoundTo            int64       `json:"roundTo" yaml:"round_to"`
}

// Family: неизменяемое описание товарного семейства.
type Family struct {
	ID          string     `json:"id" yaml:"id"`
	Kind        FamilyKind `json:"kind" yaml:"kind"`
	Name        string     `json:"name" yaml:"name"`
	Series      string     `json:"series" yaml:"series"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	BasePrice   int64      `json:"basePrice" yaml:"base_price"`

	Variants     []Variant `json:"variants" yaml:"variants"`
	HeightBounds Bounds    `json:"heightBounds" yaml:"height_bounds"`
	WidthBounds  Bounds    `json:"widthBounds" yaml:"width_bounds"`

	Pricing    Pricing    `json:"pricing" yaml:"pricing"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Category ищет категорию по id.
func (f *Family) Category(id string) *Category {
	for i := range f.Categories {
		if f.Categories[i].ID == id {
			return &f.Categories[i]
		}
	}
	return nil
}

// CategoryByRole возвращает первую категорию с указанной ролью.
func (f *Family) CategoryByRole(role CategoryRole) *Category {
	for i := range f.Categories {
		if f.Categories[i].Role == role {
			return &f.Categories[i]
		}
	}
	return nil
}

// SupportsVariant: разрешён ли вариант для семейства.
func (f *Family) SupportsVariant(v Variant) bool {
	for _, x := range f.Variants {
		if x == v {
			return true
		}
	}
	return false
}

// DefaultVariant: первый из разрешённых вариантов.
func (f *Family) DefaultVariant() Variant {
	if len(f.Variants) == 0 {
		return VariantStandard
	}
	return f.Variants[0]
}

// RoundStep: шаг округления цены, минимум 1.
func (f *Family) RoundStep() int64 {
	if f.Pricing.RoundTo < 1 {
		return 1
	}
	return f.Pricing.RoundTo
}

// Validate проверяет целостность описания семейства.
// Драйверы правил должны быть объявлены раньше зависимой категории.
func (f *Family) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("family: id is required")
	}
	if f.BasePrice <= 0 {
		return fmt.Errorf("family %s: base price must be positive", f.ID)
	}
	if len(f.Variants) == 0 {
		return fmt.Errorf("family %s: at least one variant is required", f.ID)
	}
	for _, v := range f.Variants {
		if v != VariantStandard && v != VariantCustom {
			return fmt.Errorf("family %s: unknown variant %q", f.ID, v)
		}
	}
	if f.SupportsVariant(VariantCustom) {
		if f.HeightBounds.Min <= 0 || f.HeightBounds.Min >= f.HeightBounds.Max {
			return fmt.Errorf("family %s: bad height bounds", f.ID)
		}
		if f.WidthBounds.Min <= 0 || f.WidthBounds.Min >= f.WidthBounds.Max {
			return fmt.Errorf("family %s: bad width bounds", f.ID)
		}
	}
	if f.Pricing.BaselineHeight <= 0 || f.Pricing.BaselineWidth <= 0 {
		return fmt.Errorf("family %s: baseline dimensions must be positive", f.ID)
	}

	seen := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		if c.ID == "" {
			return fmt.Errorf("family %s: category without id", f.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("family %s: duplicate category %q", f.ID, c.ID)
		}
		switch c.Pricing {
		case PricingNone, PricingFactor, PricingSurcharge:
		default:
			return fmt.Errorf("family %s: category %s: unknown pricing %q", f.ID, c.ID, c.Pricing)
		}

		ids := make(map[string]bool, len(c.Options))
		for _, o := range c.Options {
			if o.ID == "" {
				return fmt.Errorf("family %s: category %s: option without id", f.ID, c.ID)
			}
			if ids[o.ID] {
				return fmt.Errorf("family %s: category %s: duplicate option %q", f.ID, c.ID, o.ID)
			}
			ids[o.ID] = true
			if o.Factor < 0 {
				return fmt.Errorf("family %s: option %s.%s: negative factor", f.ID, c.ID, o.ID)
			}
			if o.Surcharge < 0 {
				return fmt.Errorf("family %s: option %s.%s: negative surcharge", f.ID, c.ID, o.ID)
			}
			if c.Pricing != PricingFactor && o.Factor != 0 && o.Factor != 1 {
				return fmt.Errorf("family %s: option %s.%s: factor in %s category", f.ID, c.ID, o.ID, c.Pricing)
			}
			if c.Pricing != PricingSurcharge && o.Surcharge != 0 {
				return fmt.Errorf("family %s: option %s.%s: surcharge in %s category", f.ID, c.ID, o.ID, c.Pricing)
			}
		}

		for _, r := range c.Rules {
			if !seen[r.Driver] {
				return fmt.Errorf("family %s: category %s: driver %q must be declared earlier", f.ID, c.ID, r.Driver)
			}
		}
		seen[c.ID] = true
	}
	return nil
}

// FindFamily ищет семейство по ID в слайсе.
func FindFamily(families []*Family, id string) *Family {
	for _, f := range families {
		if f.ID == id {
			return f
		}
	}
	return nil
}

type familiesFile struct {
	Families []*Family `yaml:"families"`
}

// LoadFamilies читает каталог из YAML-файла и проверяет каждое семейство.
func LoadFamilies(path string) ([]*Family, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return ParseFamilies(data)
}

// ParseFamilies разбирает YAML-каталог.
func ParseFamilies(data []byte) ([]*Family, error) {
	var file familiesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Families) == 0 {
		return nil, fmt.Errorf("parse catalog: no families")
	}
	for _, f := range file.Families {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Families, nil
}
