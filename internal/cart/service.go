// Package cart хранит позиции корзины и сохраняет их в долговременное
// хранилище после каждого изменения.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"fence-shop-backend/internal/domain"
)

// StorageKey: фиксированный ключ корзины в хранилище.
const StorageKey = "fence-shop.cart.v1"

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrNotLoaded    = errors.New("cart is not loaded")
	ErrCorrupt      = errors.New("stored cart is corrupt")
	ErrTooLarge     = errors.New("cart line total exceeds limit")
)

// PersistError: изменение применено в памяти, но не сохранено.
// Повторять сохранение сервис сам не пытается.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return "cart not persisted: " + e.Err.Error() }
func (e *PersistError) Unwrap() error { return e.Err }

// IsPersist: ошибка сохранения, состояние в памяти при этом целое.
func IsPersist(err error) bool {
	var p *PersistError
	return errors.As(err, &p)
}

// Service: корзина одного покупателя. Жизненный цикл в два шага:
// сначала Load, потом изменения; каждое изменение сразу сохраняется.
type Service struct {
	mu      sync.Mutex
	storage Storage
	key     string
	lines   []domain.CartLine
	loaded  bool
}

// NewService не читает хранилище, для этого есть Load.
func NewService(storage Storage, key string) *Service {
	if key == "" {
		key = StorageKey
	}
	return &Service{storage: storage, key: key}
}

// Load читает сохранённые позиции. Позиции без productId или name
// отбрасываются, их число возвращается в dropped. Если документ целиком
// не читается, корзина остаётся пустой и возвращается ошибка.
func (s *Service) Load(ctx context.Context) (dropped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	lines, dropped, err := s.read(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return 0, err
	}
	s.loaded = true
	s.lines = lines
	return dropped, err
}

func (s *Service) read(ctx context.Context) (lines []domain.CartLine, dropped int, err error) {
	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		return nil, 0, fmt.Errorf("load cart: %w", err)
	}
	if len(data) == 0 {
		return nil, 0, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for _, item := range raw {
		var line domain.CartLine
		if err := json.Unmarshal(item, &line); err != nil || !line.WellFormed() {
			dropped++
			continue
		}
		line.Quantity = domain.ClampQuantity(line.Quantity)
		if !line.WithinLimits() {
			dropped++
			continue
		}
		lines = append(lines, line)
	}
	return lines, dropped, nil
}

// reload перед изменением: хранилище могли поменять другие экземпляры
// сервера, источник правды там.
func (s *Service) reload(ctx context.Context) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	lines, _, err := s.read(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	s.lines = lines
	return nil
}

// Lines: копия текущих позиций в порядке добавления.
func (s *Service) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total: сумма по всем позициям.
func (s *Service) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, l := range s.lines {
		total += l.Total()
	}
	return total
}

// Add добавляет готовую позицию. Количество приводится к 1..MaxQuantity.
func (s *Service) Add(ctx context.Context, line domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return err
	}
	line.Quantity = domain.ClampQuantity(line.Quantity)
	if !line.WithinLimits() {
		return ErrTooLarge
	}
	s.lines = append(s.lines, line)
	return s.persist(ctx)
}

// UpdateQuantity меняет количество в пределах 1..MaxQuantity.
func (s *Service) UpdateQuantity(ctx context.Context, lineID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return err
	}
	qty = domain.ClampQuantity(qty)
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			line := s.lines[i]
			line.Quantity = qty
			if !line.WithinLimits() {
				return ErrTooLarge
			}
			s.lines[i] = line
			return s.persist(ctx)
		}
	}
	return ErrLineNotFound
}

// Remove удаляет позицию.
func (s *Service) Remove(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return err
	}
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persist(ctx)
		}
	}
	return ErrLineNotFound
}

// Clear очищает корзину, например после оформления заказа.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	s.lines = nil
	return s.persist(ctx)
}

func (s *Service) persist(ctx context.Context) error {
	lines := s.lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return &PersistError{Err: err}
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}
