package policy

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/auth"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/config"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/db"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/handlers"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/services"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/sse"
)

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	// RoleGate provides permission checks and middleware.
	RoleGate *RoleGate

	// Resolver attaches the caller's identity to each request.
	Resolver *auth.Resolver

	AnalyticsHandler *handlers.AnalyticsHandler
	ChatHandler      *handlers.ChatHandler
	HistoryHandler   *handlers.HistoryHandler
	AuthHandler      *handlers.AuthHandler
	SystemHandler    *handlers.SystemHandler

	// Services
	Analytics *services.AnalyticsService
}

// NewRouterConfig wires services and handlers over one database handle.
//
//	rc, err := policy.NewRouterConfig(gdb, cfg, vanna.NewClient(cfg.Vanna.BaseURL, cfg.Vanna.APIKey, cfg.Vanna.Timeout))
//	mux.Handle("GET /chat-history", rc.RoleGate.RequirePermission(policy.ResourceQueryLog, gate.ActionList)(
//		http.HandlerFunc(rc.HistoryHandler.List)))
func NewRouterConfig(gdb *gorm.DB, cfg *config.Config, chat handlers.ChatClient) (*RouterConfig, error) {
	roleGate := NewRoleGate()
	tokens := auth.NewTokenSigner(cfg.Auth.JWTSecret)

	analytics := services.NewAnalyticsService(gdb)
	logs := services.NewQueryLogService(gdb)
	users := services.NewUserService(gdb, auth.NewPasswordHasher(cfg.Auth.BcryptCost))

	system, err := handlers.NewSystemHandler(func(ctx context.Context) error { return db.Ping(ctx, gdb) })
	if err != nil {
		return nil, fmt.Errorf("system handler: %w", err)
	}

	return &RouterConfig{
		RoleGate:         roleGate,
		Resolver:         auth.NewResolver(tokens, cfg.Auth.DefaultRole),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analytics, roleGate),
		ChatHandler:      handlers.NewChatHandler(chat, logs, sse.NewRelay(cfg.Server.SSEKeepalive)),
		HistoryHandler:   handlers.NewHistoryHandler(logs),
		AuthHandler:      handlers.NewAuthHandler(users, tokens),
		SystemHandler:    system,
		Analytics:        analytics,
	}, nil
}
