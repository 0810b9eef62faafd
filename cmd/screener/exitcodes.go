package main

import (
	"errors"

	"github.com/hyperjump/screener/internal/models"
	"github.com/hyperjump/screener/internal/storage"
)

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitInvalidInput = 2 // Missing job description or resumes
	ExitNotFound     = 3 // Candidate or run not found
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, models.ErrInvalidRequest):
		return ExitInvalidInput
	case errors.Is(err, storage.ErrNotFound):
		return ExitNotFound
	default:
		return ExitError
	}
}
