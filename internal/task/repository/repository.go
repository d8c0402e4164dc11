package repository

import (
	"errors"

	"todo-backend/internal/task/domain"
)

var (
	// ErrCorruptData marks persisted content that could not be decoded.
	// Load still returns an empty, usable collection alongside it.
	ErrCorruptData = errors.New("persisted tasks are corrupt")

	// ErrUnsupportedVersion marks content written by a newer schema.
	ErrUnsupportedVersion = errors.New("persisted tasks use an unsupported schema version")
)

// TaskRepository persists the whole task collection as one unit
type TaskRepository interface {
	// Save overwrites the stored collection with tasks, preserving order
	Save(tasks []domain.Task) error

	// Load returns the stored collection; an absent slot yields an empty one.
	// Undecodable content yields an empty collection and an ErrCorruptData error.
	Load() ([]domain.Task, error)
}
