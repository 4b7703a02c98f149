package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"fence-shop-backend/internal/auth"
	"fence-shop-backend/internal/cart"
	"fence-shop-backend/internal/config"
	"fence-shop-backend/internal/configurator"
	"fence-shop-backend/internal/domain"
	"fence-shop-backend/internal/handlers"
	"fence-shop-backend/internal/metrics"
	"fence-shop-backend/internal/notify"
	"fence-shop-backend/internal/orders"
)

type App struct {
	mux *http.ServeMux
	Env *handlers.Env

	closers []func() error
}

// New собирает приложение поверх открытой БД.
func New(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, error) {
	a := &App{mux: http.NewServeMux()}

	// 1. Схема БД
	if err := ensureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensureSchema: %w", err)
	}

	// 2. Первый администратор, если пользователей ещё нет
	users := auth.NewStore(db)
	if cfg.Auth.AdminPassword != "" {
		created, err := users.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		if created {
			log.Printf("admin user %s created", cfg.Auth.AdminEmail)
		}
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	// 3. Каталог: из файла или встроенный
	families := domain.DefaultFamilies()
	if cfg.Catalog.Path != "" {
		families, err = domain.LoadFamilies(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		log.Printf("catalog loaded from %s: %d families", cfg.Catalog.Path, len(families))
	}
	catalog, err := configurator.NewCatalog(families)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	// 4. Хранилище корзин
	storage, err := openCartStorage(cfg.Cart)
	if err != nil {
		return nil, err
	}
	carts := cart.NewRegistry(storage)
	a.closers = append(a.closers, carts.Close)

	// 5. Уведомления о заказах
	var notifiers []orders.Notifier
	if cfg.Telegram.BotToken != "" {
		notifiers = append(notifiers, notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}
	if cfg.Kafka.Brokers != "" {
		k := notify.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		notifiers = append(notifiers, k)
		a.closers = append(a.closers, k.Close)
	}

	a.Env = &handlers.Env{
		Catalog:      catalog,
		Lines:        configurator.NewLineBuilder(),
		Carts:        carts,
		Orders:       orders.NewService(orders.NewRepository(db), notifiers...),
		Users:        users,
		Tokens:       tokens,
		Metrics:      metrics.NewRegistry(),
		OrderLimiter: handlers.NewLimiter(cfg.Orders.RatePerMinute, cfg.Orders.Burst),
		DB:           db,
	}

	registerRoutes(a.mux, a.Env, tokens)
	return a, nil
}

func openCartStorage(cfg config.CartConfig) (cart.Storage, error) {
	switch cfg.Backend {
	case "pebble":
		s, err := cart.NewPebbleStorage(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("open cart store: %w", err)
		}
		return s, nil
	case "redis":
		return cart.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL), nil
	case "memory":
		log.Printf("cart backend is in-memory, carts are lost on restart")
		return cart.NewMemoryStorage(), nil
	}
	return nil, fmt.Errorf("unknown cart backend %q", cfg.Backend)
}

func (a *App) Router() http.Handler {
	return a.mux
}

// Close освобождает хранилища; вызывать после остановки HTTP-сервера.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
