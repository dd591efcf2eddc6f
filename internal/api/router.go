package api

import (
	"context"
	"net/http"
	"time"

	"hapyland/internal/api/handler"
	"hapyland/internal/api/middleware"
	"hapyland/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger reports whether the store answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	CookieName     string
	SecureCookie   bool
	MaxUploadBytes int64
	RequestTimeout time.Duration
	StaticDir      string
}

func NewRouter(
	logger *zap.Logger,
	store Pinger,
	authService *service.AuthService,
	challengeService *service.ChallengeService,
	gateway service.Executor,
	limiter *middleware.RateLimiter,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	}
	r.Use(middleware.CurrentUser(authService, opts.CookieName))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.PingContext(r.Context()); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService, opts.CookieName, opts.SecureCookie, logger)
	challengeHandler := handler.NewChallengeHandler(challengeService, logger)
	executionHandler := handler.NewExecutionHandler(gateway, opts.MaxUploadBytes)

	var limit func(http.Handler) http.Handler
	if limiter != nil {
		limit = limiter.Limit
	}

	// the bundled frontend calls the same endpoints under /api
	routes := func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		challengeHandler.RegisterRoutes(r)
		executionHandler.RegisterRoutes(r, limit)
	}
	r.Group(routes)
	r.Route("/api", routes)

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return r
}
