package usecase

import "todo-backend/internal/task/domain"

func computeStatistics(tasks []domain.Task) domain.Statistics {
	stats := domain.Statistics{
		Total:      len(tasks),
		ByPriority: make(map[domain.Priority]int, len(domain.Priorities)),
	}
	for _, p := range domain.Priorities {
		stats.ByPriority[p] = 0
	}

	for _, t := range tasks {
		if t.IsCompleted {
			stats.Completed++
		}
		stats.ByPriority[domain.ParsePriority(string(t.Priority))]++
	}
	stats.Pending = stats.Total - stats.Completed

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) * 100 / float64(stats.Total)
	}
	return stats
}
