package handler

import (
	"assignment-scanner/internal/pkg/response"
	"assignment-scanner/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ReportHandler struct {
	uc usecase.ReportUsecase
}

func NewReportHandler(uc usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func (h *ReportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/reports/weekly", h.Weekly)
	r.Get("/reports/monday-brief", h.MondayBrief)
}

func (h *ReportHandler) Weekly(c fiber.Ctx) error {
	body, err := h.uc.WeeklyReport(c.Context())
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "", nil)
	}
	return response.Success(c, fiber.StatusOK, "", fiber.Map{"report": body})
}

func (h *ReportHandler) MondayBrief(c fiber.Ctx) error {
	body, err := h.uc.MondayBrief(c.Context())
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "", nil)
	}
	return response.Success(c, fiber.StatusOK, "", fiber.Map{"report": body})
}
