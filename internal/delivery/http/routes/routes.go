package routes

import (
	"net/http"

	"skill-readiness/internal/delivery/http/handler"
	"skill-readiness/internal/delivery/http/middleware"
	"skill-readiness/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Deps struct {
	Auth      *middleware.AuthMiddleware
	Health    *handler.HealthHandler
	Readiness *handler.ReadinessHandler
	JobMatch  *handler.JobMatchHandler
	WS        *ws.Handler
	Metrics   http.Handler
}

type Registry struct {
	deps Deps
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerOps(app)
	r.registerAPI(app)
	r.registerWS(app)
}

func (r *Registry) registerOps(app *fiber.App) {
	r.deps.Health.RegisterRoutes(app)
	if r.deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.deps.Metrics))
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.deps)
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.deps.WS == nil || r.deps.Auth == nil {
		return
	}
	app.Get("/ws/progress", r.deps.Auth.Middleware(), r.deps.WS.HandleProgressWS)
}
