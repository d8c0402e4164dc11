package domain

import (
	"strings"
	"time"
)

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority maps a priority name to a Priority. Matching ignores case
// and surrounding space and also accepts the Turkish names written by the
// first version of the app; anything unrecognized is medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PriorityLow), "düşük":
		return PriorityLow
	case string(PriorityHigh), "yüksek":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

func (p *Priority) UnmarshalText(text []byte) error {
	*p = ParsePriority(string(text))
	return nil
}

// Task represents a to-do item. ID and CreatedAt are fixed at creation.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	IsCompleted bool       `json:"is_completed"`
	Reminder    *time.Time `json:"reminder,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HasFutureReminder reports whether the reminder fires strictly after now.
func (t Task) HasFutureReminder(now time.Time) bool {
	return t.Reminder != nil && t.Reminder.After(now)
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.Reminder != nil {
		r := *t.Reminder
		t.Reminder = &r
	}
	return t
}

// Draft carries the caller-supplied fields of a task that does not exist yet.
type Draft struct {
	Title       string
	Description string
	Priority    Priority
	Reminder    *time.Time
}

// DayGroup is the display bucket for tasks created on one calendar day.
type DayGroup struct {
	Label string    `json:"label"`
	Day   time.Time `json:"day"`
	Tasks []Task    `json:"tasks"`
}

// Statistics summarizes the whole collection.
type Statistics struct {
	Total          int              `json:"total"`
	Completed      int              `json:"completed"`
	Pending        int              `json:"pending"`
	CompletionRate float64          `json:"completion_rate"`
	ByPriority     map[Priority]int `json:"by_priority"`
}
