package usecase

import (
	"sort"
	"time"

	"todo-backend/internal/task/domain"
)

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
)

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// groupByDay buckets tasks by the calendar day of CreatedAt in now's location.
// Buckets emptied by hideCompleted are still returned.
func groupByDay(tasks []domain.Task, now time.Time, layout string, hideCompleted bool) []domain.DayGroup {
	loc := now.Location()
	today := startOfDay(now, loc)
	yesterday := today.AddDate(0, 0, -1)

	buckets := make(map[time.Time]*domain.DayGroup)
	for _, t := range tasks {
		day := startOfDay(t.CreatedAt, loc)
		g, ok := buckets[day]
		if !ok {
			g = &domain.DayGroup{Day: day, Label: dayLabel(day, today, yesterday, layout), Tasks: []domain.Task{}}
			buckets[day] = g
		}
		if hideCompleted && t.IsCompleted {
			continue
		}
		g.Tasks = append(g.Tasks, t)
	}

	groups := make([]domain.DayGroup, 0, len(buckets))
	for _, g := range buckets {
		sortTasks(g.Tasks)
		groups = append(groups, *g)
	}

	rank := func(day time.Time) int {
		switch {
		case day.Equal(today):
			return 0
		case day.Equal(yesterday):
			return 1
		default:
			return 2
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		ri, rj := rank(groups[i].Day), rank(groups[j].Day)
		if ri != rj {
			return ri < rj
		}
		return groups[i].Day.After(groups[j].Day)
	})

	return groups
}

func dayLabel(day, today, yesterday time.Time, layout string) string {
	switch {
	case day.Equal(today):
		return LabelToday
	case day.Equal(yesterday):
		return LabelYesterday
	default:
		return day.Format(layout)
	}
}

// sortTasks puts incomplete tasks first, then newest first.
func sortTasks(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
