package handler

import (
	"strconv"
	"strings"

	"skill-readiness/internal/delivery/http/dto"
	"skill-readiness/internal/delivery/http/middleware"
	"skill-readiness/internal/pkg/response"
	"skill-readiness/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobMatchHandler struct {
	uc usecase.JobMatchUsecase
}

func NewJobMatchHandler(uc usecase.JobMatchUsecase) *JobMatchHandler {
	return &JobMatchHandler{uc: uc}
}

func (h *JobMatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/me/jobs/ranked", h.Ranked)
}

func (h *JobMatchHandler) Ranked(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return badRequest(err)
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return badRequest(err)
	}

	ranked, err := h.uc.RankedJobs(c.Context(), learnerID, usecase.RankedJobsParams{Limit: limit, Offset: offset})
	if err != nil {
		return mapUsecaseError(err)
	}

	items := make([]dto.RankedJobResponse, 0, len(ranked))
	for _, j := range ranked {
		items = append(items, dto.RankedJobResponse{
			JobID:          j.JobID,
			Title:          j.Title,
			Company:        j.Company,
			Location:       j.Location,
			URL:            j.URL,
			Skills:         j.Skills,
			PostedDate:     j.PostedDate,
			MatchScore:     j.MatchScore,
			MatchingSkills: j.MatchingSkills,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RankedJobsResponse{
		Items:  items,
		Limit:  limit,
		Offset: offset,
	})
}

func queryInt(c fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
