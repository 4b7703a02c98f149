package domain

// PricingMode: как опции категории влияют на цену.
type PricingMode string

const (
	PricingNone      PricingMode = "none"      // только выбор, без влияния на цену
	PricingFactor    PricingMode = "factor"    // множитель к базовой цене
	PricingSurcharge PricingMode = "surcharge" // фиксированная надбавка после всех множителей
)

// CategoryRole помечает категории, которые движок читает особым образом.
type CategoryRole string

const (
	RoleGeneric CategoryRole = ""
	RoleHeight  CategoryRole = "height" // стандартные высоты, Option.Value в см
	RoleWidth   CategoryRole = "width"  // стандартные ширины, Option.Value в см
	RoleColor   CategoryRole = "color"  // палитра; Option.Custom = произвольный RAL
	RolePattern CategoryRole = "pattern"
)

// Option описывает одно значение внутри категории.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`

	// Factor: множитель (0 трактуется как 1.0), Surcharge: надбавка в рублях.
	Factor    float64 `json:"factor,omitempty" yaml:"factor,omitempty"`
	Surcharge int64   `json:"surcharge,omitempty" yaml:"surcharge,omitempty"`

	GroupLabel string  `json:"groupLabel,omitempty" yaml:"group,omitempty"`
	Value      float64 `json:"value,omitempty" yaml:"value,omitempty"`

	// для рендера: цвет (#rrggbb) или ссылка на текстуру
	Swatch  string `json:"swatch,omitempty" yaml:"swatch,omitempty"`
	Texture string `json:"texture,omitempty" yaml:"texture,omitempty"`

	Custom bool `json:"custom,omitempty" yaml:"custom,omitempty"`

	// When: CEL-выражение над sel (map категория -> id опции).
	When string `json:"when,omitempty" yaml:"when,omitempty"`
}

// EffectiveFactor возвращает множитель опции, 1.0 по умолчанию.
func (o Option) EffectiveFactor() float64 {
	if o.Factor == 0 {
		return 1.0
	}
	return o.Factor
}

// Rule: таблица совместимости: выбранная опция категории Driver
// ограничивает список допустимых опций зависимой категории.
type Rule struct {
	Driver  string              `json:"driver" yaml:"driver"`
	Allowed map[string][]string `json:"allowed" yaml:"allowed"`
}

// Category: одно измерение настройки товара.
type Category struct {
	ID      string       `json:"id" yaml:"id"`
	Label   string       `json:"label" yaml:"label"`
	Role    CategoryRole `json:"role,omitempty" yaml:"role,omitempty"`
	Pricing PricingMode  `json:"pricing" yaml:"pricing"`
	Options []Option     `json:"options" yaml:"options"`
	Rules   []Rule       `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Option ищет опцию по id.
func (c *Category) Option(id string) (Option, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Drivers: категории, от выбора в которых зависит эта.
func (c *Category) Drivers() []string {
	out := make([]string, 0, len(c.Rules))
	for _, r := range c.Rules {
		out = append(out, r.Driver)
	}
	return out
}
