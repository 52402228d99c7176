package handler

import (
	"strings"

	"skill-readiness/internal/delivery/http/dto"
	"skill-readiness/internal/delivery/http/middleware"
	"skill-readiness/internal/domain/roadmap"
	"skill-readiness/internal/domain/skill"
	"skill-readiness/internal/pkg/response"
	"skill-readiness/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ReadinessHandler struct {
	uc usecase.ReadinessUsecase
}

func NewReadinessHandler(uc usecase.ReadinessUsecase) *ReadinessHandler {
	return &ReadinessHandler{uc: uc}
}

func (h *ReadinessHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/me")
	grp.Get("/readiness", h.Current)
	grp.Put("/role", h.SelectRole)
	grp.Get("/roles/quick-match", h.BrowseRoles)

	grp.Get("/skills", h.ListSkills)
	grp.Post("/skills", h.AddSkill)
	grp.Put("/skills/:skillId", h.UpdateSkill)
	grp.Delete("/skills/:skillId", h.RemoveSkill)

	grp.Put("/roadmap", h.ReplaceRoadmap)
	grp.Post("/roadmap/:itemId/toggle", h.ToggleRoadmapItem)
}

func (h *ReadinessHandler) Current(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	v, err := h.uc.Current(c.Context(), learnerID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *ReadinessHandler) SelectRole(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	var req dto.SelectRoleRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	v, err := h.uc.SelectRole(c.Context(), learnerID, req.RoleID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *ReadinessHandler) BrowseRoles(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	matches, err := h.uc.BrowseRoles(c.Context(), learnerID)
	if err != nil {
		return mapUsecaseError(err)
	}

	res := make([]dto.RoleMatchResponse, 0, len(matches))
	for _, m := range matches {
		res = append(res, dto.RoleMatchResponse{
			RoleID:          m.Role.ID,
			Title:           m.Role.Title,
			Category:        m.Role.Category,
			AvgSalary:       m.Role.AvgSalary,
			Demand:          m.Role.Demand,
			RequiredSkills:  len(m.Role.RequiredSkills),
			MatchPercentage: m.MatchPercentage,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *ReadinessHandler) ListSkills(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	inv, err := h.uc.Inventory(c.Context(), learnerID)
	if err != nil {
		return mapUsecaseError(err)
	}

	res := make([]dto.UserSkillResponse, 0, len(inv))
	for _, us := range inv {
		res = append(res, dto.UserSkillResponse{
			SkillID:     string(us.ID),
			SkillName:   us.Name,
			Category:    us.Category,
			Proficiency: string(us.Proficiency),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *ReadinessHandler) AddSkill(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	var req dto.AddSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}
	if strings.TrimSpace(req.SkillID) == "" {
		return badRequest(nil)
	}

	s := skill.Skill{
		ID:       skill.ID(strings.TrimSpace(req.SkillID)),
		Name:     strings.TrimSpace(req.SkillName),
		Category: strings.TrimSpace(req.Category),
	}
	v, err := h.uc.AddSkill(c.Context(), learnerID, s, req.Proficiency)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, v)
}

func (h *ReadinessHandler) UpdateSkill(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	var req dto.UpdateSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	v, err := h.uc.UpdateSkill(c.Context(), learnerID, skill.ID(c.Params("skillId")), req.Proficiency)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *ReadinessHandler) RemoveSkill(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	v, err := h.uc.RemoveSkill(c.Context(), learnerID, skill.ID(c.Params("skillId")))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *ReadinessHandler) ReplaceRoadmap(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	var req dto.ReplaceRoadmapRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	items := make([]roadmap.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, roadmap.Item{
			ID:            strings.TrimSpace(it.ID),
			SkillID:       skill.ID(strings.TrimSpace(it.SkillID)),
			SkillName:     strings.TrimSpace(it.SkillName),
			Difficulty:    it.Difficulty,
			EstimatedTime: it.EstimatedTime,
			Completed:     it.Completed,
		})
	}

	v, err := h.uc.ReplaceRoadmap(c.Context(), learnerID, items)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *ReadinessHandler) ToggleRoadmapItem(c fiber.Ctx) error {
	learnerID, ok := middleware.LearnerID(c)
	if !ok {
		return unauthorized()
	}

	res, err := h.uc.ToggleRoadmapItem(c.Context(), learnerID, c.Params("itemId"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
