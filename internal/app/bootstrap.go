package app

import (
	"context"
	"fmt"
	"strings"

	"skill-readiness/internal/config"
	"skill-readiness/internal/delivery/http/handler"
	"skill-readiness/internal/delivery/http/middleware"
	"skill-readiness/internal/delivery/http/routes"
	"skill-readiness/internal/pkg/logger"
	"skill-readiness/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Log)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires the container, starts its workers and builds the HTTP app.
// The returned cleanup drains pending saves before closing connections.
func Bootstrap(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	c.Start(ctx)

	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, log *logger.Logger) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(log)
	errMw := middleware.NewErrorMiddleware(log)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	routes.NewRegistry(routes.Deps{
		Auth:      middleware.NewAuthMiddleware(c.JWT),
		Health:    handler.NewHealthHandler(c.DB, c.Cache),
		Readiness: handler.NewReadinessHandler(c.Readiness),
		JobMatch:  handler.NewJobMatchHandler(c.JobMatch),
		WS:        ws.NewHandler(c.Hub, middleware.LearnerID, c.Log),
		Metrics:   c.Metrics.Handler(),
	}).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
