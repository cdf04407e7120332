package routes

import (
	"assignment-scanner/internal/delivery/http/handler"
	"assignment-scanner/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health    *handler.HealthHandler
	scan      *handler.ScanHandler
	matches   *handler.MatchHandler
	optimizer *handler.OptimizerHandler
	reports   *handler.ReportHandler
}

func NewRegistry(
	db handler.Pinger,
	redis handler.Pinger,
	trigger handler.ScanTrigger,
	matching usecase.MatchingUsecase,
	optimizer usecase.OptimizerUsecase,
	reports usecase.ReportUsecase,
) *Registry {
	return &Registry{
		health:    handler.NewHealthHandler(db, redis),
		scan:      handler.NewScanHandler(trigger),
		matches:   handler.NewMatchHandler(matching),
		optimizer: handler.NewOptimizerHandler(optimizer),
		reports:   handler.NewReportHandler(reports),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	v1 := api.Group("/v1")
	r.scan.RegisterRoutes(v1)
	r.matches.RegisterRoutes(v1)
	r.optimizer.RegisterRoutes(v1)
	r.reports.RegisterRoutes(v1)
}
