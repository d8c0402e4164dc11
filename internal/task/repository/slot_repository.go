package repository

import (
	"errors"
	"fmt"

	"todo-backend/internal/task/domain"
	"todo-backend/pkg/kvstore"
)

// slotTaskRepository implements TaskRepository on a single kvstore slot
type slotTaskRepository struct {
	store kvstore.Store
	key   string
}

// NewSlotTaskRepository creates a TaskRepository writing to store under key
func NewSlotTaskRepository(store kvstore.Store, key string) TaskRepository {
	return &slotTaskRepository{store: store, key: key}
}

func (r *slotTaskRepository) Save(tasks []domain.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := r.store.Put(r.key, data); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", r.key, err)
	}
	return nil
}

func (r *slotTaskRepository) Load() ([]domain.Task, error) {
	data, err := r.store.Get(r.key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []domain.Task{}, nil
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", r.key, err)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		if errors.Is(err, ErrCorruptData) {
			return []domain.Task{}, err
		}
		return nil, err
	}
	return tasks, nil
}
