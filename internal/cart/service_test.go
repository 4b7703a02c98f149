package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fence-shop-backend/internal/domain"
)

type failingStorage struct {
	*MemoryStorage
	failSave bool
	failLoad bool
}

func (f *failingStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if f.failLoad {
		return nil, errors.New("disk gone")
	}
	return f.MemoryStorage.Load(ctx, key)
}

func (f *failingStorage) Save(ctx context.Context, key string, data []byte) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.MemoryStorage.Save(ctx, key, data)
}

func testLine(id string, price int64, qty int) domain.CartLine {
	return domain.CartLine{
		ID:        id,
		ProductID: "gate-vp",
		Name:      "Калитка",
		Series:    "VP",
		UnitPrice: price,
		Quantity:  qty,
		Config: domain.Configuration{
			FamilyID:   "gate-vp",
			Variant:    domain.VariantStandard,
			Selections: map[string]string{"profile": "p20"},
			Quantity:   qty,
		},
	}
}

func loaded(t *testing.T, st Storage) *Service {
	t.Helper()
	s := NewService(st, "")
	_, err := s.Load(context.Background())
	require.NoError(t, err)
	return s
}

func TestCartRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()

	s := loaded(t, st)
	require.NoError(t, s.Add(ctx, testLine("a", 5784, 1)))
	require.NoError(t, s.Add(ctx, testLine("b", 6334, 2)))
	require.NoError(t, s.UpdateQuantity(ctx, "a", 3))
	assert.Equal(t, int64(5784*3+6334*2), s.Total())

	again := loaded(t, st)
	assert.Equal(t, s.Lines(), again.Lines())

	require.NoError(t, again.Remove(ctx, "a"))
	assert.Len(t, again.Lines(), 1)
	assert.ErrorIs(t, again.Remove(ctx, "a"), ErrLineNotFound)
	assert.ErrorIs(t, again.UpdateQuantity(ctx, "a", 2), ErrLineNotFound)

	require.NoError(t, again.Clear(ctx))
	data, err := st.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestQuantityNeverBelowOne(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, NewMemoryStorage())

	require.NoError(t, s.Add(ctx, testLine("a", 100, 0)))
	assert.Equal(t, 1, s.Lines()[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, "a", -4))
	assert.Equal(t, 1, s.Lines()[0].Quantity)
}

func TestMutationBeforeLoad(t *testing.T) {
	s := NewService(NewMemoryStorage(), "k")
	assert.ErrorIs(t, s.Add(context.Background(), testLine("a", 1, 1)), ErrNotLoaded)
	assert.ErrorIs(t, s.Clear(context.Background()), ErrNotLoaded)
}

func TestLoadDropsMalformedLines(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	require.NoError(t, st.Save(ctx, "k", []byte(`[
		{"id":"a","productId":"gate-vp","name":"Калитка","unitPrice":100,"quantity":1},
		{"id":"b","name":"без товара","unitPrice":100,"quantity":1},
		{"id":"c","productId":"gate-vp","unitPrice":"oops"},
		42
	]`)))

	s := NewService(st, "k")
	dropped, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, "a", s.Lines()[0].ID)
}

func TestLoadCorruptDocument(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	require.NoError(t, st.Save(ctx, "k", []byte(`{"not":"a list"}`)))

	s := NewService(st, "k")
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Empty(t, s.Lines())
	// корзина всё равно пригодна к работе
	assert.NoError(t, s.Add(ctx, testLine("a", 1, 1)))
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	st := &failingStorage{MemoryStorage: NewMemoryStorage()}
	s := loaded(t, st)
	require.NoError(t, s.Add(ctx, testLine("a", 100, 1)))

	st.failSave = true
	err := s.Add(ctx, testLine("b", 200, 1))
	require.Error(t, err)
	assert.True(t, IsPersist(err))
	assert.Len(t, s.Lines(), 2)
	assert.Equal(t, int64(300), s.Total())

	// в хранилище осталась только первая позиция
	st.failSave = false
	again := loaded(t, st)
	assert.Len(t, again.Lines(), 1)
}

func TestLinesReturnsCopy(t *testing.T) {
	s := loaded(t, NewMemoryStorage())
	require.NoError(t, s.Add(context.Background(), testLine("a", 100, 1)))
	lines := s.Lines()
	lines[0].UnitPrice = 1
	assert.Equal(t, int64(100), s.Lines()[0].UnitPrice)
}

func TestRegistryIsolatesCarts(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	r := NewRegistry(st)

	a, err := r.Open(ctx, "cart-a")
	require.NoError(t, err)
	b, err := r.Open(ctx, "cart-b")
	require.NoError(t, err)
	require.NoError(t, a.Add(ctx, testLine("x", 100, 1)))

	assert.Len(t, a.Lines(), 1)
	assert.Empty(t, b.Lines())

	// непустая корзина попадает в кэш и дальше отдаётся тем же Service
	first, err := r.Open(ctx, "cart-a")
	require.NoError(t, err)
	same, err := r.Open(ctx, "cart-a")
	require.NoError(t, err)
	assert.Same(t, first, same)
	assert.Len(t, same.Lines(), 1)

	data, err := st.Load(ctx, StorageKey+":cart-a")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.NoError(t, r.Close())
}

func TestRegistryOpenErrors(t *testing.T) {
	ctx := context.Background()
	st := &failingStorage{MemoryStorage: NewMemoryStorage(), failLoad: true}
	r := NewRegistry(st)

	_, err := r.Open(ctx, "c")
	require.Error(t, err)

	// после восстановления хранилища корзина открывается заново
	st.failLoad = false
	require.NoError(t, st.Save(ctx, StorageKey+":c", []byte("garbage")))
	s, err := r.Open(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, s.Lines())
}

func TestPebbleStorage(t *testing.T) {
	ctx := context.Background()
	p, err := NewPebbleStorage(t.TempDir())
	require.NoError(t, err)
	defer p.Close()

	v, err := p.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	s := loaded(t, p)
	require.NoError(t, s.Add(ctx, testLine("a", 5784, 2)))
	again := loaded(t, p)
	assert.Equal(t, int64(11568), again.Total())
}

func TestQuantityCapped(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, NewMemoryStorage())

	require.NoError(t, s.Add(ctx, testLine("a", 5543, 1<<62)))
	assert.Equal(t, domain.MaxQuantity, s.Lines()[0].Quantity)
	assert.Equal(t, int64(5543*domain.MaxQuantity), s.Total())

	require.NoError(t, s.UpdateQuantity(ctx, "a", 2_000_000_000_000_000))
	assert.Equal(t, domain.MaxQuantity, s.Lines()[0].Quantity)

	assert.ErrorIs(t, s.Add(ctx, testLine("b", domain.MaxTotal, 2)), ErrTooLarge)
	require.NoError(t, s.Add(ctx, testLine("b", domain.MaxTotal, 1)))
	assert.ErrorIs(t, s.UpdateQuantity(ctx, "b", 2), ErrTooLarge)
	assert.Equal(t, 1, s.Lines()[1].Quantity)
}

func TestLoadClampsStoredQuantity(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	require.NoError(t, st.Save(ctx, "k", []byte(`[
		{"id":"a","productId":"gate-vp","name":"Калитка","unitPrice":100,"quantity":9223372036854775807},
		{"id":"b","productId":"gate-vp","name":"Калитка","unitPrice":9223372036854775807,"quantity":5}
	]`)))

	s := NewService(st, "k")
	dropped, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, domain.MaxQuantity, s.Lines()[0].Quantity)
}

func TestRegistrySkipsEmptyCarts(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(NewMemoryStorage())

	for i := 0; i < 1000; i++ {
		s, err := r.Open(ctx, fmt.Sprintf("cart-%d", i))
		require.NoError(t, err)
		assert.Empty(t, s.Lines())
	}
	assert.Equal(t, 0, r.cached())
}

func TestRegistryForgetsIdleCarts(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	r := NewRegistry(st)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	for _, id := range []string{"a", "b"} {
		require.NoError(t, st.Save(ctx, StorageKey+":"+id, []byte(`[{"id":"x","productId":"gate-vp","name":"Калитка","unitPrice":100,"quantity":1}]`)))
		_, err := r.Open(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, r.cached())

	now = now.Add(idleTTL / 2)
	_, err := r.Open(ctx, "a")
	require.NoError(t, err)

	now = now.Add(idleTTL/2 + time.Minute)
	_, err = r.Open(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, r.cached())
}

func TestRegistriesShareStorage(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	first, second := NewRegistry(st), NewRegistry(st)

	a, err := first.Open(ctx, "shared")
	require.NoError(t, err)
	b, err := second.Open(ctx, "shared")
	require.NoError(t, err)

	require.NoError(t, a.Add(ctx, testLine("x", 100, 1)))
	require.NoError(t, b.Add(ctx, testLine("y", 200, 1)))
	assert.Len(t, b.Lines(), 2)

	require.NoError(t, a.UpdateQuantity(ctx, "y", 3))
	assert.Len(t, a.Lines(), 2)
	assert.Equal(t, int64(700), a.Total())

	again, err := second.Open(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, int64(700), again.Total())

	data, err := st.Load(ctx, StorageKey+":shared")
	require.NoError(t, err)
	var stored []domain.CartLine
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Len(t, stored, 2)
}

func TestRedisStorage(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	st := NewRedisStorage(mr.Addr(), "", 0, time.Hour)
	defer st.Close()

	v, err := st.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	s := loaded(t, st)
	require.NoError(t, s.Add(ctx, testLine("a", 5784, 2)))
	again := loaded(t, st)
	assert.Equal(t, int64(11568), again.Total())

	mr.FastForward(2 * time.Hour)
	v, err = st.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.Nil(t, v)

	mr.Close()
	_, err = st.Load(ctx, StorageKey)
	assert.Error(t, err)
}
