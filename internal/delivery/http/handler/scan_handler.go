package handler

import (
	"context"

	"assignment-scanner/internal/pkg/response"
	"assignment-scanner/internal/scheduler"
	"assignment-scanner/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// ScanTrigger is what the scan handler needs from the scheduler.
type ScanTrigger interface {
	TriggerScanNow(ctx context.Context, configID *uuid.UUID) ([]usecase.CycleResult, error)
	Status() []scheduler.JobStatus
}

type ScanHandler struct {
	trigger ScanTrigger
}

func NewScanHandler(trigger ScanTrigger) *ScanHandler {
	return &ScanHandler{trigger: trigger}
}

func (h *ScanHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/scan/trigger", h.TriggerScan)
	r.Get("/scheduler/status", h.SchedulerStatus)
}

type cycleResultResponse struct {
	ConfigID         uuid.UUID         `json:"config_id"`
	ConfigName       string            `json:"config_name"`
	JobsFound        int               `json:"jobs_found"`
	MatchesGenerated int               `json:"matches_generated"`
	QualityScore     float64           `json:"quality_score"`
	SourcesScanned   []string          `json:"sources_scanned,omitempty"`
	SourceErrors     map[string]string `json:"source_errors,omitempty"`
}

func (h *ScanHandler) TriggerScan(c fiber.Ctx) error {
	var configID *uuid.UUID
	if raw := c.Query("config_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, fiber.StatusBadRequest, "invalid config_id", nil)
		}
		configID = &id
	}

	results, err := h.trigger.TriggerScanNow(c.Context(), configID)
	if err != nil {
		if err == usecase.ErrConfigNotFound {
			return response.Error(c, fiber.StatusNotFound, "scanning config not found", nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, "", nil)
	}

	out := make([]cycleResultResponse, 0, len(results))
	for _, r := range results {
		item := cycleResultResponse{
			ConfigID:         r.ConfigID,
			ConfigName:       r.ConfigName,
			JobsFound:        r.JobsFound,
			MatchesGenerated: r.MatchesGenerated,
			QualityScore:     r.QualityScore,
			SourcesScanned:   r.SourcesScanned,
		}
		if len(r.SourceErrors) > 0 {
			item.SourceErrors = make(map[string]string, len(r.SourceErrors))
			for name, srcErr := range r.SourceErrors {
				item.SourceErrors[name] = srcErr.Error()
			}
		}
		out = append(out, item)
	}
	return response.Success(c, fiber.StatusOK, "scan completed", out)
}

func (h *ScanHandler) SchedulerStatus(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, "", h.trigger.Status())
}
