package handler

import (
	"time"

	"assignment-scanner/internal/pkg/response"
	"assignment-scanner/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type OptimizerHandler struct {
	uc usecase.OptimizerUsecase
}

func NewOptimizerHandler(uc usecase.OptimizerUsecase) *OptimizerHandler {
	return &OptimizerHandler{uc: uc}
}

func (h *OptimizerHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/learned-parameters", h.LearnedParameters)
	r.Post("/optimizer/run", h.RunOptimizer)
}

type learnedParameterResponse struct {
	ParameterName       string     `json:"parameter_name"`
	ParameterValue      string     `json:"parameter_value"`
	EffectivenessScore  float64    `json:"effectiveness_score"`
	UseCount            int        `json:"use_count"`
	LearnedFromConfigID *uuid.UUID `json:"learned_from_config_id,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// LearnedParameters lists the best-performing learned parameters for manual
// curation of scanning configurations.
func (h *OptimizerHandler) LearnedParameters(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 20)

	params, err := h.uc.TopLearnedParameters(c.Context(), limit)
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "", nil)
	}

	out := make([]learnedParameterResponse, 0, len(params))
	for _, p := range params {
		out = append(out, learnedParameterResponse{
			ParameterName:       p.ParameterName,
			ParameterValue:      p.ParameterValue,
			EffectivenessScore:  p.EffectivenessScore,
			UseCount:            p.UseCount,
			LearnedFromConfigID: p.LearnedFromConfigID,
			UpdatedAt:           p.UpdatedAt,
		})
	}
	return response.Success(c, fiber.StatusOK, "", out)
}

func (h *OptimizerHandler) RunOptimizer(c fiber.Ctx) error {
	summary, err := h.uc.Optimize(c.Context())
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "", nil)
	}
	return response.Success(c, fiber.StatusOK, "optimization completed", summary)
}
