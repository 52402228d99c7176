package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRoleNotFound = errors.New("role not found")
	ErrInternal     = errors.New("internal error")
)
