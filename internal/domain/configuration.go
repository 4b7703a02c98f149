package domain

// Configuration: состояние настройки одного изделия.
// Height/Width заполняются только для варианта custom.
type Configuration struct {
	FamilyID   string            `json:"familyId"`
	Variant    Variant           `json:"variant"`
	Selections map[string]string `json:"selections"`
	Height     *float64          `json:"height,omitempty"`
	Width      *float64          `json:"width,omitempty"`
	ColorCode  string            `json:"colorCode,omitempty"` // RAL для произвольного цвета
	Notes      string            `json:"notes,omitempty"`
	Quantity   int               `json:"quantity"`
}

// Clone возвращает глубокую копию.
func (c Configuration) Clone() Configuration {
	out := c
	out.Selections = make(map[string]string, len(c.Selections))
	for k, v := range c.Selections {
		out.Selections[k] = v
	}
	if c.Height != nil {
		h := *c.Height
		out.Height = &h
	}
	if c.Width != nil {
		w := *c.Width
		out.Width = &w
	}
	return out
}

// Dimension: поле размера под заказ.
type Dimension string

const (
	DimHeight Dimension = "height"
	DimWidth  Dimension = "width"
)
