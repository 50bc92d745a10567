package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/saulo-duarte/chronos-goals/internal/action"
	"github.com/saulo-duarte/chronos-goals/internal/ambition"
	"github.com/saulo-duarte/chronos-goals/internal/auth"
	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/container"
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
	"github.com/saulo-duarte/chronos-goals/internal/middlewares"
	"github.com/saulo-duarte/chronos-goals/internal/objective"
	"github.com/saulo-duarte/chronos-goals/internal/progress"
	"github.com/saulo-duarte/chronos-goals/internal/quality"
	"github.com/saulo-duarte/chronos-goals/internal/trend"
)

type RouterConfig struct {
	AllowedOrigins []string
	CookieDomain   string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer

	AmbitionHandler  *ambition.Handler
	ObjectiveHandler *objective.Handler
	ProgressHandler  *progress.Handler
	QualityHandler   *quality.Handler
	TrendHandler     *trend.Handler
	ActionHandler    *action.Handler
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware(cfg.AllowedOrigins))
	r.Use(cfg.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		config.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/logout", auth.NewSessionHandler(cfg.CookieDomain).Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/ambitions", ambition.Routes(cfg.AmbitionHandler))
		r.Mount("/key-results", ambition.KeyResultRoutes(cfg.AmbitionHandler))
		r.Mount("/objectives", objective.Routes(cfg.ObjectiveHandler))
		r.Mount("/quarterly-key-results", objective.KeyResultRoutes(cfg.ObjectiveHandler))
		r.Mount("/actions", action.Routes(cfg.ActionHandler))
		r.Mount("/quality", quality.Routes(cfg.QualityHandler))
		r.Mount("/trends", trend.Routes(cfg.TrendHandler))

		r.Get("/boards/{boardId}", cfg.ActionHandler.GetBoard)
		progress.Register(r, cfg.ProgressHandler)
	})
	return r
}

// FromContainer routes every feature handler the container built.
func FromContainer(c *container.Container) http.Handler {
	return New(RouterConfig{
		AllowedOrigins:   c.Settings.AllowedOrigins,
		CookieDomain:     c.Settings.CookieDomain,
		Metrics:          c.Metrics,
		Gatherer:         c.Registry,
		AmbitionHandler:  c.AmbitionContainer.Handler,
		ObjectiveHandler: c.ObjectiveContainer.Handler,
		ProgressHandler:  c.ProgressContainer.Handler,
		QualityHandler:   c.QualityContainer.Handler,
		TrendHandler:     c.TrendContainer.Handler,
		ActionHandler:    c.ActionContainer.Handler,
	})
}
