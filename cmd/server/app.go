package main

import (
	"net/http"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/gate"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/middleware"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/policy"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *policy.RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured. corsOrigin is
// "*" or a comma separated list of allowed origins.
func NewApp(routerCfg *policy.RouterConfig, corsOrigin string) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	app.handler = middleware.Chain(app.mux,
		middleware.Recover,
		middleware.WithLogging,
		middleware.CORS(corsOrigin),
		routerCfg.Resolver.Middleware,
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	sys := a.routerCfg.SystemHandler
	a.mux.HandleFunc("GET /{$}", sys.Landing)
	a.mux.HandleFunc("GET /health", sys.Health)
	a.mux.HandleFunc("GET /docs", sys.Docs)
	a.mux.HandleFunc("GET /openapi.yaml", sys.OpenAPIYAML)
	a.mux.HandleFunc("GET /openapi.json", sys.OpenAPIJSON)

	// Aggregations. Every role may read them; amounts are masked per role
	// inside the handlers.
	an := a.routerCfg.AnalyticsHandler
	a.mux.HandleFunc("GET /stats", an.Stats)
	a.mux.HandleFunc("GET /invoice-trends", an.Trends)
	a.mux.HandleFunc("GET /vendors/top10", an.TopVendors)
	a.mux.HandleFunc("GET /category-spend", an.CategorySpend)
	a.mux.HandleFunc("GET /cash-outflow", an.CashOutflow)
	a.mux.HandleFunc("GET /invoices", an.Invoices)

	ch := a.routerCfg.ChatHandler
	a.mux.HandleFunc("POST /chat-with-data", ch.Chat)
	a.mux.HandleFunc("GET /chat-with-data/stream", ch.Stream)

	// Chat history is admin only.
	a.mux.Handle("GET /chat-history",
		a.requirePermission(policy.ResourceQueryLog, gate.ActionList)(http.HandlerFunc(a.routerCfg.HistoryHandler.List)))

	ah := a.routerCfg.AuthHandler
	a.mux.HandleFunc("POST /auth/signup", ah.Signup)
	a.mux.HandleFunc("POST /auth/login", ah.Login)
	a.mux.HandleFunc("GET /auth/me", ah.Me)
}

// requirePermission wraps a handler to require a permission of the caller's role.
func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.routerCfg.RoleGate.RequirePermission(resourceType, action)
}
