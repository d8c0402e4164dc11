package usecase

import (
	"errors"
	"fmt"
	"sync"

	"todo-backend/internal/task/domain"
	"todo-backend/internal/task/repository"
	"todo-backend/internal/task/scheduler"
	"todo-backend/pkg/clock"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultDayLabelFormat renders day headers other than Today and Yesterday
const DefaultDayLabelFormat = "02.01.2006"

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo    repository.TaskRepository
	reminders   Reminders
	clock       clock.Clock
	logger      zerolog.Logger
	labelFormat string

	mu    sync.RWMutex
	tasks []domain.Task
}

// NewTaskUsecase creates a new instance of taskUsecase with an empty collection
func NewTaskUsecase(
	taskRepo repository.TaskRepository,
	reminders Reminders,
	clk clock.Clock,
	logger zerolog.Logger,
	labelFormat string,
) TaskUsecase {
	if labelFormat == "" {
		labelFormat = DefaultDayLabelFormat
	}
	return &taskUsecase{
		taskRepo:    taskRepo,
		reminders:   reminders,
		clock:       clk,
		logger:      logger,
		labelFormat: labelFormat,
		tasks:       []domain.Task{},
	}
}

func (u *taskUsecase) Load() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	tasks, err := u.taskRepo.Load()
	switch {
	case errors.Is(err, repository.ErrCorruptData):
		u.logger.Warn().Err(err).Msg("stored tasks are unreadable, starting with an empty list")
		tasks = []domain.Task{}
	case err != nil:
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	u.tasks = tasks
	u.logger.Info().Int("count", len(tasks)).Msg("tasks loaded")
	u.syncReminders()
	return nil
}

func (u *taskUsecase) AddTask(draft domain.Draft) (*domain.Task, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	task := domain.Task{
		ID:          u.newID(),
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    domain.ParsePriority(string(draft.Priority)),
		CreatedAt:   u.clock.Now().Round(0),
	}
	if draft.Reminder != nil {
		r := *draft.Reminder
		task.Reminder = &r
	}

	next := append(u.snapshot(), task)
	if err := u.commit(next); err != nil {
		return nil, err
	}

	created := task.Clone()
	return &created, nil
}

func (u *taskUsecase) UpdateTask(task domain.Task) (*domain.Task, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	idx := u.indexOf(task.ID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
	}

	updated := task.Clone()
	updated.CreatedAt = u.tasks[idx].CreatedAt
	updated.Priority = domain.ParsePriority(string(task.Priority))

	next := u.snapshot()
	next[idx] = updated
	if err := u.commit(next); err != nil {
		return nil, err
	}

	out := updated.Clone()
	return &out, nil
}

func (u *taskUsecase) ToggleCompleted(id string) (*domain.Task, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	idx := u.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	next := u.snapshot()
	next[idx].IsCompleted = !next[idx].IsCompleted
	if err := u.commit(next); err != nil {
		return nil, err
	}

	out := next[idx].Clone()
	return &out, nil
}

// RemoveTasks is all-or-nothing: one unknown id leaves the collection untouched.
func (u *taskUsecase) RemoveTasks(ids []string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}

	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if u.indexOf(id) < 0 {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		remove[id] = struct{}{}
	}

	next := make([]domain.Task, 0, len(u.tasks)-len(remove))
	for _, t := range u.tasks {
		if _, ok := remove[t.ID]; !ok {
			next = append(next, t.Clone())
		}
	}

	if err := u.persist(next); err != nil {
		return err
	}
	u.tasks = next

	for id := range remove {
		if err := u.reminders.Cancel(id); err != nil {
			u.logger.Error().Err(err).Str("task_id", id).Msg("failed to cancel reminder")
		}
	}
	u.syncReminders()

	u.logger.Info().Int("count", len(remove)).Msg("tasks removed")
	return nil
}

func (u *taskUsecase) GetTask(id string) (*domain.Task, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	idx := u.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	out := u.tasks[idx].Clone()
	return &out, nil
}

func (u *taskUsecase) Tasks() []domain.Task {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.snapshot()
}

func (u *taskUsecase) GroupedByDay(hideCompleted bool) []domain.DayGroup {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return groupByDay(u.snapshot(), u.clock.Now(), u.labelFormat, hideCompleted)
}

func (u *taskUsecase) Search(query string) []domain.Task {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return searchTasks(u.snapshot(), query)
}

func (u *taskUsecase) Statistics() domain.Statistics {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return computeStatistics(u.tasks)
}

func (u *taskUsecase) ReminderStatus() scheduler.Status {
	return u.reminders.Status()
}

// commit persists next, makes it current and re-syncs reminders.
// The caller must hold the write lock.
func (u *taskUsecase) commit(next []domain.Task) error {
	if err := u.persist(next); err != nil {
		return err
	}
	u.tasks = next
	u.syncReminders()
	return nil
}

func (u *taskUsecase) persist(next []domain.Task) error {
	if err := u.taskRepo.Save(next); err != nil {
		u.logger.Error().Err(err).Msg("failed to persist tasks")
		return fmt.Errorf("failed to persist tasks: %w", err)
	}
	return nil
}

// syncReminders never fails the caller; errors surface through ReminderStatus.
func (u *taskUsecase) syncReminders() {
	if err := u.reminders.Reconcile(u.snapshot()); err != nil {
		u.logger.Error().Err(err).Msg("failed to sync reminders")
	}
}

func (u *taskUsecase) snapshot() []domain.Task {
	out := make([]domain.Task, len(u.tasks))
	for i, t := range u.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (u *taskUsecase) indexOf(id string) int {
	for i := range u.tasks {
		if u.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *taskUsecase) newID() string {
	for {
		id := uuid.New().String()
		if u.indexOf(id) < 0 {
			return id
		}
	}
}
