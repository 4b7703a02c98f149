package domain

import "time"

// SummaryItem: одна строка человекочитаемого описания конфигурации.
type SummaryItem struct {
	Key   string `json:"key"`   // id категории или поля
	Label string `json:"label"` // название категории
	Value string `json:"value"` // подпись выбранной опции
	Raw   string `json:"raw"`   // машинное значение
}

// CartLine: зафиксированная позиция корзины. Цена не пересчитывается.
type CartLine struct {
	ID          string        `json:"id"`
	ProductID   string        `json:"productId"`
	Name        string        `json:"name"`
	Series      string        `json:"series"`
	UnitPrice   int64         `json:"unitPrice"`
	Quantity    int           `json:"quantity"`
	WidthMM     int           `json:"widthMm"`
	HeightLabel string        `json:"heightLabel"`
	Summary     []SummaryItem `json:"summary"`
	Config      Configuration `json:"config"`
	CreatedAt   time.Time     `json:"createdAt"`
}

const (
	// MaxQuantity: больше штук в одной позиции не принимаем.
	MaxQuantity = 9999
	// MaxTotal: потолок суммы позиции и заказа в рублях.
	MaxTotal int64 = 1_000_000_000
)

// ClampQuantity приводит количество к диапазону 1..MaxQuantity.
func ClampQuantity(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxQuantity:
		return MaxQuantity
	}
	return n
}

// Total: стоимость позиции с учётом количества.
func (l CartLine) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// WithinLimits: количество в диапазоне и сумма позиции не выше MaxTotal.
// Проверка делением, чтобы произведение не переполнилось.
func (l CartLine) WithinLimits() bool {
	if l.Quantity < 1 || l.Quantity > MaxQuantity || l.UnitPrice < 0 {
		return false
	}
	return l.UnitPrice <= MaxTotal/int64(l.Quantity)
}

// WellFormed: минимальная проверка формы при загрузке из хранилища.
func (l CartLine) WellFormed() bool {
	return l.ProductID != "" && l.Name != ""
}
