package orders

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fence-shop-backend/internal/domain"
)

var orderRowColumns = []string{
	"id", "number", "status", "customer_name", "customer_phone", "customer_email",
	"customer_address", "customer_comment", "lines", "total", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("o1", "ZB-20261017-0001", "new", "Иван", "+7 900 000-00-00", "", "Москва", "",
			sqlmock.AnyArg(), int64(6334), at, at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &domain.Order{
		ID:        "o1",
		Number:    "ZB-20261017-0001",
		Status:    domain.StatusNew,
		Customer:  domain.Customer{Name: "Иван", Phone: "+7 900 000-00-00", Address: "Москва"},
		Lines:     []domain.OrderLine{{ProductID: "gate-vp", Name: "Калитка", UnitPrice: 6334, Quantity: 1}},
		Total:     6334,
		CreatedAt: at,
		UpdatedAt: at,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGet(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`SELECT ` + orderColumns + ` FROM orders WHERE id = $1`)

	rows := sqlmock.NewRows(orderRowColumns).AddRow(
		"o1", "ZB-20261017-0001", "in-progress", "Иван", "+79000000000", nil,
		"Москва", "позвонить заранее",
		`[{"productId":"gate-vp","name":"Калитка","series":"VP","unitPrice":6334,"quantity":2,"config":{"variant":"standard","installDate":"2026-11-01"}}]`,
		int64(12668), at, "2026-10-17 10:30:00+00:00",
	)
	mock.ExpectQuery(query).WithArgs("o1").WillReturnRows(rows)

	o, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, o.Status)
	assert.Equal(t, "", o.Customer.Email)
	assert.Equal(t, "позвонить заранее", o.Customer.Comment)
	assert.Equal(t, int64(12668), o.Total)
	require.Len(t, o.Lines, 1)
	assert.JSONEq(t, `"2026-11-01"`, string(o.Lines[0].Config["installDate"]))
	assert.True(t, at.Equal(o.CreatedAt))
	assert.Equal(t, 10, o.UpdatedAt.Hour())

	mock.ExpectQuery(query).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(query).WithArgs("o2").WillReturnError(errors.New("conn reset"))
	_, err = repo.Get(ctx, "o2")
	assert.ErrorContains(t, err, "failed to get order")
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	row := func(id string) []driver.Value {
		return []driver.Value{id, "ZB-" + id, "new", "Иван", "+79000000000", "a@b.ru", "Москва", nil, `[]`, int64(100), at, at}
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders ORDER BY created_at DESC LIMIT $1`)).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(row("a")...).AddRow(row("b")...))
	list, err := repo.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@b.ru", list[0].Customer.Email)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2`)).
		WithArgs("done", 10).
		WillReturnRows(sqlmock.NewRows(orderRowColumns))
	list, err = repo.List(ctx, domain.StatusDone, 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`)

	mock.ExpectExec(query).WithArgs("done", at, "o1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateStatus(ctx, "o1", domain.StatusDone, at))

	mock.ExpectExec(query).WithArgs("done", at, "nope").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "nope", domain.StatusDone, at), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCountSince(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM orders WHERE created_at >= $1`)).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
