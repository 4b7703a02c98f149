package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fence-shop-backend/internal/domain"
)

var userColumns = []string{"id", "email", "name", "role", "password_hash", "created_at"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestAuthenticate(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	query := regexp.QuoteMeta("FROM users WHERE email = $1")

	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(userColumns).
			AddRow("u1", "admin@example.com", "Админ", "admin", string(hash), time.Now())
	}

	mock.ExpectQuery(query).WithArgs("admin@example.com").WillReturnRows(userRow())
	u, err := store.Authenticate(ctx, "  Admin@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, u.IsAdmin())

	mock.ExpectQuery(query).WithArgs("admin@example.com").WillReturnRows(userRow())
	_, err = store.Authenticate(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery(query).WithArgs("ghost@example.com").WillReturnRows(sqlmock.NewRows(userColumns))
	_, err = store.Authenticate(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery(query).WithArgs("nopass@example.com").WillReturnRows(
		sqlmock.NewRows(userColumns).AddRow("u2", "nopass@example.com", "Менеджер", "manager", nil, time.Now()))
	_, err = store.Authenticate(ctx, "nopass@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPassword(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	query := regexp.QuoteMeta("UPDATE users SET password_hash = $1 WHERE id = $2")

	assert.ErrorIs(t, store.SetPassword(ctx, "u1", "short"), ErrWeakPassword)

	mock.ExpectExec(query).WithArgs(sqlmock.AnyArg(), "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, store.SetPassword(ctx, "u1", "long-enough"))

	mock.ExpectExec(query).WithArgs(sqlmock.AnyArg(), "nope").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.SetPassword(ctx, "nope", "long-enough"), ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdmin(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	count := regexp.QuoteMeta("SELECT COUNT(*) FROM users")

	mock.ExpectQuery(count).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "admin@example.com", "Администратор", "admin", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	created, err := store.EnsureAdmin(ctx, "Admin@Example.com", "secret-pass")
	require.NoError(t, err)
	assert.True(t, created)

	mock.ExpectQuery(count).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	created, err = store.EnsureAdmin(ctx, "admin@example.com", "secret-pass")
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).WithArgs("x").WillReturnRows(sqlmock.NewRows(userColumns))
	_, err := store.GetUser(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func newTestTokens(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("0123456789abcdef-test", time.Hour)
	require.NoError(t, err)
	return tm
}

func TestTokenIssueValidate(t *testing.T) {
	tm := newTestTokens(t)
	u := &domain.User{ID: "u1", Email: "m@example.com", Role: domain.RoleManager}

	token, exp, err := tm.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, domain.RoleManager, claims.Role)

	other, err := NewTokenManager("another-secret-of-16+", time.Hour)
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.Error(t, err)

	// через два часа токен просрочен
	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = NewTokenManager("short", time.Hour)
	assert.Error(t, err)
}

func TestRequireMiddleware(t *testing.T) {
	tm := newTestTokens(t)
	var seen *Claims
	h := tm.Require(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	adminToken, _, err := tm.Issue(&domain.User{ID: "a1", Role: domain.RoleAdmin})
	require.NoError(t, err)
	managerToken, _, err := tm.Issue(&domain.User{ID: "m1", Role: domain.RoleManager})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("Token "+adminToken))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage"))
	assert.Equal(t, http.StatusForbidden, do("Bearer "+managerToken))
	assert.Equal(t, http.StatusNoContent, do("Bearer "+adminToken))
	require.NotNil(t, seen)
	assert.Equal(t, "a1", seen.Subject)

	req := httptest.NewRequest(http.MethodOptions, "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
