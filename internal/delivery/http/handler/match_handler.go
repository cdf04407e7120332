package handler

import (
	"errors"
	"time"

	"assignment-scanner/internal/pkg/response"
	"assignment-scanner/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	uc usecase.MatchingUsecase
}

func NewMatchHandler(uc usecase.MatchingUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/jobs")
	grp.Get("/:job_id/matches", h.GetMatches)
}

type matchResponse struct {
	ConsultantID      uuid.UUID `json:"consultant_id"`
	Score             float64   `json:"score"`
	Summary           string    `json:"summary"`
	SkillsMatched     []string  `json:"skills_matched"`
	SkillsMissing     []string  `json:"skills_missing"`
	LanguageMatch     bool      `json:"language_match"`
	LocationMatch     bool      `json:"location_match"`
	AvailabilityMatch bool      `json:"availability_match"`
	Strengths         []string  `json:"strengths"`
	Concerns          []string  `json:"concerns"`
	CreatedAt         time.Time `json:"created_at"`
}

func (h *MatchHandler) GetMatches(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid job_id", nil)
	}

	limit := fiber.Query(c, "limit", 10)

	matches, err := h.uc.MatchesForJob(c.Context(), jobID, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			return response.Error(c, fiber.StatusNotFound, "job not found", nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, "", nil)
	}

	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchResponse{
			ConsultantID:      m.ConsultantID,
			Score:             m.Score,
			Summary:           m.Reason.Summary,
			SkillsMatched:     m.Reason.SkillsMatched,
			SkillsMissing:     m.Reason.SkillsMissing,
			LanguageMatch:     m.Reason.LanguageMatch,
			LocationMatch:     m.Reason.LocationMatch,
			AvailabilityMatch: m.Reason.AvailabilityMatch,
			Strengths:         m.Reason.Strengths,
			Concerns:          m.Reason.Concerns,
			CreatedAt:         m.CreatedAt,
		})
	}
	return response.Success(c, fiber.StatusOK, "", out)
}
