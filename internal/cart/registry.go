package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// idleTTL: через сколько забываем корзину, к которой не обращались.
const idleTTL = 30 * time.Minute

// Registry раздаёт корзины по id покупателя поверх одного хранилища.
// Ключ в хранилище: StorageKey + ":" + id.
//
// Кэшируются только непустые корзины, и только пока к ним обращаются:
// кэш нужен, чтобы запросы к одной корзине шли через один Service.
// Содержимое при каждом Open и перед каждым изменением перечитывается
// из хранилища.
type Registry struct {
	mu        sync.Mutex
	storage   Storage
	carts     map[string]*cachedCart
	lastSweep time.Time
	now       func() time.Time
}

type cachedCart struct {
	svc      *Service
	lastSeen time.Time
}

func NewRegistry(storage Storage) *Registry {
	return &Registry{
		storage: storage,
		carts:   make(map[string]*cachedCart),
		now:     time.Now,
	}
}

// Open возвращает загруженную корзину. Битый документ в хранилище
// не мешает работе: корзина начинается пустой, ошибка пишется в лог.
// Недоступное хранилище возвращает ошибку, корзина не кэшируется.
func (r *Registry) Open(ctx context.Context, cartID string) (*Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	svc := NewService(r.storage, StorageKey+":"+cartID)
	if c, ok := r.carts[cartID]; ok {
		svc = c.svc
	}
	dropped, err := svc.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return nil, err
		}
		log.Printf("cart %s: %v", cartID, err)
	}
	if dropped > 0 {
		log.Printf("cart %s: dropped %d malformed lines", cartID, dropped)
	}

	if len(svc.Lines()) == 0 {
		delete(r.carts, cartID)
		return svc, nil
	}
	r.carts[cartID] = &cachedCart{svc: svc, lastSeen: now}
	return svc, nil
}

// sweep выбрасывает простаивающие корзины, не чаще раза в idleTTL.
func (r *Registry) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < idleTTL {
		return
	}
	r.lastSweep = now
	for id, c := range r.carts {
		if now.Sub(c.lastSeen) > idleTTL {
			delete(r.carts, id)
		}
	}
}

// cached: сколько корзин держим в памяти.
func (r *Registry) cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Close закрывает хранилище.
func (r *Registry) Close() error {
	return r.storage.Close()
}
