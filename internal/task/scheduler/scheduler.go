package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"todo-backend/internal/task/domain"
	"todo-backend/pkg/clock"

	"github.com/rs/zerolog"
)

// Alert is a one-shot local notification keyed by task id.
type Alert struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	FireAt time.Time `json:"fire_at"`
}

func (a Alert) sameAs(b Alert) bool {
	return a.ID == b.ID && a.Title == b.Title && a.Body == b.Body && a.FireAt.Equal(b.FireAt)
}

// AlertCenter is the system that actually delivers alerts. Schedule replaces
// any alert already held under the same id; Cancel of an unknown id is a no-op.
type AlertCenter interface {
	Schedule(alert Alert) error
	Cancel(id string) error
}

// Status describes the scheduler's view after the most recent reconcile.
type Status struct {
	LastReconcile time.Time `json:"last_reconcile"`
	LastError     string    `json:"last_error,omitempty"`
	Pending       int       `json:"pending"`
}

// ReminderScheduler keeps the alert center in step with task reminders.
type ReminderScheduler struct {
	center AlertCenter
	clock  clock.Clock
	logger zerolog.Logger

	mu        sync.Mutex
	scheduled map[string]Alert
	status    Status
}

// NewReminderScheduler creates a scheduler with an empty ledger
func NewReminderScheduler(center AlertCenter, clk clock.Clock, logger zerolog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		center:    center,
		clock:     clk,
		logger:    logger,
		scheduled: make(map[string]Alert),
	}
}

func alertFor(t domain.Task) Alert {
	return Alert{
		ID:     t.ID,
		Title:  t.Title,
		Body:   t.Description,
		FireAt: *t.Reminder,
	}
}

// Reconcile schedules, replaces and cancels alerts so that exactly the tasks
// with a reminder strictly in the future have one. A reminder that is already
// due is left with the alert center.
func (s *ReminderScheduler) Reconcile(tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var errs []error

	byID := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	for _, t := range tasks {
		if !t.HasFutureReminder(now) {
			continue
		}
		want := alertFor(t)
		if have, ok := s.scheduled[t.ID]; ok && have.sameAs(want) {
			continue
		}
		if err := s.center.Schedule(want); err != nil {
			errs = append(errs, fmt.Errorf("schedule %s: %w", t.ID, err))
			continue
		}
		s.scheduled[t.ID] = want
		s.logger.Debug().Str("task_id", t.ID).Time("fire_at", want.FireAt).Msg("reminder scheduled")
	}

	for _, id := range s.ledgerIDs() {
		t, exists := byID[id]
		switch {
		case exists && t.HasFutureReminder(now):
			continue
		case exists && t.Reminder != nil && t.Reminder.Equal(s.scheduled[id].FireAt):
			// Due already: the center fires or expires it on its own.
			delete(s.scheduled, id)
		default:
			if err := s.center.Cancel(id); err != nil {
				errs = append(errs, fmt.Errorf("cancel %s: %w", id, err))
				continue
			}
			delete(s.scheduled, id)
			s.logger.Debug().Str("task_id", id).Msg("reminder cancelled")
		}
	}

	err := errors.Join(errs...)
	s.record(now, err)
	return err
}

// Cancel drops any alert for id. Unknown ids are not an error.
func (s *ReminderScheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.center.Cancel(id); err != nil {
		err = fmt.Errorf("cancel %s: %w", id, err)
		s.status.LastError = err.Error()
		return err
	}
	delete(s.scheduled, id)
	s.status.Pending = len(s.scheduled)
	return nil
}

// Scheduled returns the alerts this scheduler believes are pending, ordered
// by fire time.
func (s *ReminderScheduler) Scheduled() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alert, 0, len(s.scheduled))
	for _, a := range s.scheduled {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].FireAt.Before(out[j].FireAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *ReminderScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *ReminderScheduler) ledgerIDs() []string {
	ids := make([]string, 0, len(s.scheduled))
	for id := range s.scheduled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *ReminderScheduler) record(now time.Time, err error) {
	s.status.LastReconcile = now
	s.status.Pending = len(s.scheduled)
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
	}
}
