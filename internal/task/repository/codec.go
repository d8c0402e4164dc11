package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"todo-backend/internal/task/domain"
)

const schemaVersion = 1

type envelope struct {
	Version int          `json:"version"`
	Tasks   []taskRecord `json:"tasks"`
}

type taskRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	IsCompleted bool       `json:"isCompleted"`
	Reminder    *timestamp `json:"reminder,omitempty"`
	CreatedAt   timestamp  `json:"createdAt"`
}

// referenceDate is the epoch of numeric timestamps in bare-array data
var referenceDate = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// timestamp is written as RFC3339 and read from either RFC3339 or a number
// of seconds since referenceDate.
type timestamp struct {
	time.Time
}

func (ts *timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return ts.Time.UnmarshalJSON(data)
	}

	secs, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	whole, frac := math.Modf(secs)
	ts.Time = referenceDate.
		Add(time.Duration(whole) * time.Second).
		Add(time.Duration(math.Round(frac * 1e9)))
	return nil
}

func toTimestamp(t *time.Time) *timestamp {
	if t == nil {
		return nil
	}
	return &timestamp{Time: *t}
}

func fromTimestamp(ts *timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}

func encodeTasks(tasks []domain.Task) ([]byte, error) {
	env := envelope{Version: schemaVersion, Tasks: make([]taskRecord, 0, len(tasks))}
	for _, t := range tasks {
		env.Tasks = append(env.Tasks, taskRecord{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    string(t.Priority),
			IsCompleted: t.IsCompleted,
			Reminder:    toTimestamp(t.Reminder),
			CreatedAt:   timestamp{Time: t.CreatedAt},
		})
	}
	return json.Marshal(env)
}

// decodeTasks accepts the versioned envelope and the unversioned bare array
// written before the envelope existed.
func decodeTasks(data []byte) ([]domain.Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrCorruptData)
	}

	var records []taskRecord
	if data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
	} else {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		if env.Version > schemaVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
		if env.Version < 1 {
			return nil, fmt.Errorf("%w: missing version", ErrCorruptData)
		}
		records = env.Tasks
	}

	tasks := make([]domain.Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrCorruptData, i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrCorruptData, r.ID)
		}
		seen[r.ID] = struct{}{}

		tasks = append(tasks, domain.Task{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Priority:    domain.ParsePriority(r.Priority),
			IsCompleted: r.IsCompleted,
			Reminder:    fromTimestamp(r.Reminder),
			CreatedAt:   r.CreatedAt.Time,
		})
	}
	return tasks, nil
}
