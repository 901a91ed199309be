package api

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wrt/internal/api/middleware"
	"github.com/lzjever/mbos-wrt/internal/appctx"
	"github.com/lzjever/mbos-wrt/internal/async"
)

// Lifecycle is the part of the lifecycle controller the HTTP surface drives.
type Lifecycle interface {
	Ready() <-chan struct{}
	StartWorkspace(restoreFromSnapshot bool) *async.Future
	StopWorkspace()
}

type API struct {
	app       *appctx.Context
	lifecycle Lifecycle
	log       *zap.Logger
}

func NewAPI(app *appctx.Context, lifecycle Lifecycle, log *zap.Logger) *API {
	return &API{
		app:       app,
		lifecycle: lifecycle,
		log:       log,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(a.log))
	r.Use(middleware.Logger(a.log))
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Health endpoints
	r.Get("/healthz", a.HealthHandler)
	r.Get("/readyz", a.ReadyHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/workspace", a.GetWorkspace)
		r.Post("/workspace:start", a.StartWorkspace)
		r.Post("/workspace:stop", a.StopWorkspace)
	})

	return r
}
