// Package auth: сотрудники магазина, пароли и токены админки.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fence-shop-backend/internal/dbx"
	"fence-shop-backend/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// MinPasswordLength: минимальная длина пароля сотрудника.
const MinPasswordLength = 8

// Store хранит сотрудников в таблице users.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetUser достаёт пользователя по id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, email, name, role, password_hash, created_at
FROM users
WHERE id = $1
`, id)
	return scanUser(row)
}

func (s *Store) getByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, email, name, role, password_hash, created_at
FROM users
WHERE email = $1
`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// Authenticate проверяет email и пароль. Для неизвестного email и неверного
// пароля ошибка одна и та же.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.getByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SetPassword устанавливает новый пароль (bcrypt-хеш).
func (s *Store) SetPassword(ctx context.Context, id, password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE users SET password_hash = $1 WHERE id = $2
`,
		string(hash),
		id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// EnsureAdmin заводит первого администратора, если в таблице никого нет.
// Возвращает true, если пользователь был создан.
func (s *Store) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO users (id, email, name, role, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`,
		uuid.NewString(),
		strings.ToLower(strings.TrimSpace(email)),
		"Администратор",
		string(domain.RoleAdmin),
		string(hash),
		time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	var hash sql.NullString
	var createdAt dbx.Time

	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&role,
		&hash,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u.Role = domain.Role(role)
	u.PasswordHash = hash.String
	u.CreatedAt = createdAt.Time
	return &u, nil
}
