package usecase

import (
	"errors"

	"todo-backend/internal/task/domain"
	"todo-backend/internal/task/scheduler"
)

// ErrTaskNotFound is returned when an operation names an id the store does not hold
var ErrTaskNotFound = errors.New("task not found")

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// Load reads the persisted collection and re-syncs reminders
	Load() error

	// AddTask creates a task with a fresh id and creation time
	AddTask(draft domain.Draft) (*domain.Task, error)

	// UpdateTask replaces the task with the same id, keeping its creation time
	UpdateTask(task domain.Task) (*domain.Task, error)

	// ToggleCompleted flips the completion flag of one task
	ToggleCompleted(id string) (*domain.Task, error)

	// RemoveTasks deletes every listed task and cancels their reminders
	RemoveTasks(ids []string) error

	// GetTask returns a single task by id
	GetTask(id string) (*domain.Task, error)

	// Tasks returns the whole collection in insertion order
	Tasks() []domain.Task

	// GroupedByDay returns the day-grouped display view
	GroupedByDay(hideCompleted bool) []domain.DayGroup

	// Search returns tasks matching query, most relevant first
	Search(query string) []domain.Task

	// Statistics summarizes completion and priority counts
	Statistics() domain.Statistics

	// ReminderStatus reports the outcome of the last reminder sync
	ReminderStatus() scheduler.Status
}

// Reminders is the notification side of the store
type Reminders interface {
	Reconcile(tasks []domain.Task) error
	Cancel(id string) error
	Status() scheduler.Status
}
