package handler

import (
	"context"
	"time"

	"assignment-scanner/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
}

func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	type healthData struct {
		DatabaseHealthy bool      `json:"database_healthy"`
		RedisHealthy    bool      `json:"redis_healthy"`
		ServerTime      time.Time `json:"server_time"`
	}

	data := healthData{ServerTime: time.Now().UTC()}
	data.DatabaseHealthy = pingOK(c.Context(), h.db)
	data.RedisHealthy = pingOK(c.Context(), h.redis)

	status := fiber.StatusOK
	if !data.DatabaseHealthy {
		status = fiber.StatusServiceUnavailable
	}
	return response.Success(c, status, "", data)
}

func pingOK(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(pingCtx) == nil
}
