package handler

import (
	"errors"

	"skill-readiness/internal/delivery/http/middleware"
	"skill-readiness/internal/domain/gap"
	"skill-readiness/internal/domain/proficiency"
	"skill-readiness/internal/domain/roadmap"
	"skill-readiness/internal/domain/skill"
	"skill-readiness/internal/pkg/response"
	"skill-readiness/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

func unauthorized() error {
	return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
}

func badRequest(err error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
}

func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, proficiency.ErrInvalidLevel):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid proficiency level", nil, err)
	case errors.Is(err, skill.ErrInvalidSkill),
		errors.Is(err, roadmap.ErrDuplicateItem),
		errors.Is(err, usecase.ErrInvalidInput):
		return badRequest(err)
	case errors.Is(err, gap.ErrNoRoleSelected):
		return middleware.NewAppError(fiber.StatusConflict, "No role selected", nil, err)
	case errors.Is(err, roadmap.ErrItemNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Roadmap item not found", nil, err)
	case errors.Is(err, usecase.ErrRoleNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Role not found", nil, err)
	case errors.Is(err, skill.ErrSkillAlreadyExists):
		return middleware.NewAppError(fiber.StatusConflict, "Skill already exists", nil, err)
	case errors.Is(err, skill.ErrSkillNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Skill not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
