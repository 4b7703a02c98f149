// Package orders оформляет заказы из позиций корзины и хранит их в БД.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"fence-shop-backend/internal/dbx"
	"fence-shop-backend/internal/domain"
)

// validationError: ошибка в данных покупателя, уходит клиенту как 400.
type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return validationError{message: msg}
}

// IsValidation отличает ошибки данных от ошибок инфраструктуры.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

// Store: то, что сервису нужно от хранилища заказов.
type Store interface {
	Create(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus, limit int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) error
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// Notifier получает уже сохранённый заказ. Ошибки уведомлений заказ не ломают.
type Notifier interface {
	OrderCreated(ctx context.Context, o *domain.Order) error
}

// numberAttempts: сколько раз пробуем занять следующий номер при гонке.
const numberAttempts = 3

type Service struct {
	store     Store
	notifiers []Notifier
	location  *time.Location

	Now   func() time.Time
	NewID func() string
}

func NewService(store Store, notifiers ...Notifier) *Service {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		store:     store,
		notifiers: notifiers,
		location:  loc,
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// Submit проверяет контакты, собирает заказ из позиций корзины и сохраняет его.
// Номер заказа: ZB-ГГГГММДД-NNNN, счётчик в пределах суток.
func (s *Service) Submit(ctx context.Context, customer domain.Customer, lines []domain.CartLine) (*domain.Order, error) {
	customer = normalizeCustomer(customer)
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, newValidationError("корзина пуста")
	}

	order := &domain.Order{
		ID:       s.NewID(),
		Status:   domain.StatusNew,
		Customer: customer,
		Lines:    make([]domain.OrderLine, 0, len(lines)),
	}
	for _, l := range lines {
		if !l.WellFormed() || l.UnitPrice <= 0 {
			return nil, newValidationError("позиция корзины повреждена: " + l.ID)
		}
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		if !l.WithinLimits() {
			return nil, newValidationError("слишком большое количество в позиции: " + l.ID)
		}
		if order.Total > domain.MaxTotal-l.Total() {
			return nil, newValidationError("сумма заказа слишком велика")
		}
		ol, err := domain.NewOrderLine(l)
		if err != nil {
			return nil, fmt.Errorf("order line %s: %w", l.ID, err)
		}
		order.Lines = append(order.Lines, ol)
		order.Total += l.Total()
	}

	now := s.Now().In(s.location)
	order.CreatedAt = now.UTC()
	order.UpdatedAt = order.CreatedAt

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	seq, err := s.store.CountSince(ctx, dayStart.UTC())
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		order.Number = fmt.Sprintf("ZB-%s-%04d", now.Format("20060102"), seq+attempt)
		err = s.store.Create(ctx, order)
		if err == nil {
			break
		}
		if !dbx.IsUniqueViolation(err) || attempt == numberAttempts {
			return nil, err
		}
	}

	for _, n := range s.notifiers {
		if err := n.OrderCreated(ctx, order); err != nil {
			log.Printf("order %s: notify: %v", order.Number, err)
		}
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, newValidationError("неизвестный статус: " + string(status))
	}
	return s.store.List(ctx, status, 200)
}

// UpdateStatus меняет статус и возвращает обновлённый заказ.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, newValidationError("неизвестный статус: " + string(status))
	}
	if err := s.store.UpdateStatus(ctx, id, status, s.Now().UTC()); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// normalizeCustomer обрезает пробелы и приводит текст к NFC.
func normalizeCustomer(c domain.Customer) domain.Customer {
	clean := func(s string) string { return norm.NFC.String(strings.TrimSpace(s)) }
	c.Name = clean(c.Name)
	c.Phone = clean(c.Phone)
	c.Email = strings.ToLower(clean(c.Email))
	c.Address = clean(c.Address)
	c.Comment = clean(c.Comment)
	return c
}

func validateCustomer(c domain.Customer) error {
	if c.Name == "" {
		return newValidationError("укажите имя")
	}
	if c.Phone == "" {
		return newValidationError("укажите телефон")
	}
	digits := 0
	for _, r := range c.Phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 10 {
		return newValidationError("телефон указан неверно")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return newValidationError("email указан неверно")
	}
	if c.Address == "" {
		return newValidationError("укажите адрес доставки")
	}
	return nil
}
