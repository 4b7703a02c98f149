package cart

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebbleStorage хранит корзины в локальной PebbleDB.
type PebbleStorage struct {
	db *pebble.DB
}

func NewPebbleStorage(dir string) (*PebbleStorage, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStorage{db: d}, nil
}

func (p *PebbleStorage) Load(_ context.Context, key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get %s: %w", key, err)
	}
	defer closer.Close()
	// v живёт только до closer.Close
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (p *PebbleStorage) Save(_ context.Context, key string, data []byte) error {
	if err := p.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", key, err)
	}
	return nil
}

func (p *PebbleStorage) Close() error { return p.db.Close() }
