package usecase

import (
	"sort"
	"strings"

	"todo-backend/internal/task/domain"
	"todo-backend/pkg/fuzzy"
)

func searchTasks(tasks []domain.Task, query string) []domain.Task {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Task{}
	}

	type scored struct {
		task  domain.Task
		score float64
	}

	var hits []scored
	for _, t := range tasks {
		if fuzzy.MatchTask(query, t.Title, t.Description) {
			hits = append(hits, scored{task: t, score: fuzzy.RelevanceScore(query, t.Title, t.Description)})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if !hits[i].task.CreatedAt.Equal(hits[j].task.CreatedAt) {
			return hits[i].task.CreatedAt.After(hits[j].task.CreatedAt)
		}
		return hits[i].task.ID < hits[j].task.ID
	})

	out := make([]domain.Task, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.task)
	}
	return out
}
