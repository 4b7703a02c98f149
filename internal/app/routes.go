package app

import (
	"net/http"

	"fence-shop-backend/internal/auth"
	"fence-shop-backend/internal/domain"
	"fence-shop-backend/internal/handlers"
)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+handlers.CartHeader)
		w.Header().Set("Access-Control-Expose-Headers", handlers.CartHeader)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func registerRoutes(mux *http.ServeMux, env *handlers.Env, tokens *auth.TokenManager) {
	staff := tokens.Require(domain.RoleAdmin, domain.RoleManager)

	// --- витрина ---
	mux.Handle("/api/families", withCORS(http.HandlerFunc(env.HandleFamilies)))
	mux.Handle("/api/families/", withCORS(http.HandlerFunc(env.HandleFamilyDetail)))
	mux.Handle("/api/quote", withCORS(http.HandlerFunc(env.HandleQuote)))

	// корзина по заголовку X-Cart-ID
	mux.Handle("/api/cart", withCORS(http.HandlerFunc(env.HandleCart)))
	mux.Handle("/api/cart/lines", withCORS(http.HandlerFunc(env.HandleCartLines)))
	mux.Handle("/api/cart/lines/", withCORS(http.HandlerFunc(env.HandleCartLines)))

	mux.Handle("/api/orders", withCORS(http.HandlerFunc(env.HandleOrders)))

	// --- админка ---
	mux.Handle("/api/admin/login", withCORS(http.HandlerFunc(env.HandleAdminLogin)))
	mux.Handle("/api/admin/orders", withCORS(staff(http.HandlerFunc(env.HandleAdminOrders))))
	mux.Handle("/api/admin/orders/", withCORS(staff(http.HandlerFunc(env.HandleAdminOrderDetail))))
	mux.Handle("/api/admin/users/", withCORS(staff(http.HandlerFunc(env.HandleAdminUserPassword))))

	// --- служебное ---
	mux.Handle("/metrics", env.Metrics.Handler())
	mux.HandleFunc("/healthz", env.HandleHealth)
}
