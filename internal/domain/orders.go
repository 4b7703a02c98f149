package domain

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusInProgress OrderStatus = "in-progress"
	StatusDone       OrderStatus = "done"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid: статус входит в фиксированный набор.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Customer: контакты и адрес доставки.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
	Comment string `json:"comment,omitempty"`
}

// OrderLine: позиция заказа в том виде, в каком она хранится в БД.
// Config хранится как произвольный JSON: старые заказы могут содержать
// поля, которых уже нет в каталоге.
type OrderLine struct {
	ProductID string                     `json:"productId"`
	Name      string                     `json:"name"`
	Series    string                     `json:"series"`
	UnitPrice int64                      `json:"unitPrice"`
	Quantity  int                        `json:"quantity"`
	Config    map[string]json.RawMessage `json:"config"`
}

// Order: заказ. После создания ядро его не меняет, статус меняет админ.
type Order struct {
	ID        string      `json:"id"`
	Number    string      `json:"number"`
	Status    OrderStatus `json:"status"`
	Customer  Customer    `json:"customer"`
	Lines     []OrderLine `json:"lines"`
	Total     int64       `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewOrderLine превращает позицию корзины в позицию заказа.
func NewOrderLine(l CartLine) (OrderLine, error) {
	raw, err := json.Marshal(l.Config)
	if err != nil {
		return OrderLine{}, err
	}
	var cfg map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return OrderLine{}, err
	}
	return OrderLine{
		ProductID: l.ProductID,
		Name:      l.Name,
		Series:    l.Series,
		UnitPrice: l.UnitPrice,
		Quantity:  l.Quantity,
		Config:    cfg,
	}, nil
}
