package app

import (
	"fmt"
	"strings"

	"assignment-scanner/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the container and the HTTP surface on top of it. The
// returned cleanup closes the container.
func Bootstrap(c *Container) (*App, func() error, error) {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	registry := routes.NewRegistry(
		c.DB, c.Redis, c.Scheduler,
		c.Matching, c.Optimizer, c.Reports,
	)
	registry.Register(f)

	app := &App{Fiber: f, Container: c}
	return app, c.Close, nil
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
