package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"todo-backend/internal/device/domain"
	"todo-backend/pkg/clock"
	"todo-backend/pkg/kvstore"

	"github.com/google/uuid"
)

// ErrEmptyToken is returned when registering a blank token
var ErrEmptyToken = errors.New("device token must not be empty")

// DeviceRepository defines the interface for device token operations
type DeviceRepository interface {
	SaveToken(token, deviceInfo string) (*domain.DeviceToken, error)
	ListTokens() ([]domain.DeviceToken, error)
	DeleteToken(token string) error
}

type deviceRecord struct {
	ID         string    `json:"id"`
	Token      string    `json:"token"`
	DeviceInfo string    `json:"deviceInfo"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// slotDeviceRepository keeps every token in one kvstore slot
type slotDeviceRepository struct {
	store kvstore.Store
	key   string
	clock clock.Clock
	mu    sync.Mutex
}

// NewSlotDeviceRepository creates a new instance of slotDeviceRepository
func NewSlotDeviceRepository(store kvstore.Store, key string, clk clock.Clock) DeviceRepository {
	return &slotDeviceRepository{store: store, key: key, clock: clk}
}

// SaveToken inserts token or refreshes its device info if already known
func (r *slotDeviceRepository) SaveToken(token, deviceInfo string) (*domain.DeviceToken, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return nil, err
	}

	now := r.clock.Now().Round(0)
	idx := -1
	for i := range records {
		if records[i].Token == token {
			idx = i
			break
		}
	}
	if idx >= 0 {
		records[idx].DeviceInfo = deviceInfo
		records[idx].UpdatedAt = now
	} else {
		records = append(records, deviceRecord{
			ID:         uuid.New().String(),
			Token:      token,
			DeviceInfo: deviceInfo,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		idx = len(records) - 1
	}

	if err := r.write(records); err != nil {
		return nil, err
	}
	saved := toDomain(records[idx])
	return &saved, nil
}

// ListTokens returns every registered token in registration order
func (r *slotDeviceRepository) ListTokens() ([]domain.DeviceToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return nil, err
	}
	tokens := make([]domain.DeviceToken, 0, len(records))
	for _, rec := range records {
		tokens = append(tokens, toDomain(rec))
	}
	return tokens, nil
}

// DeleteToken removes a specific token; unknown tokens are ignored
func (r *slotDeviceRepository) DeleteToken(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.Token != token {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return r.write(kept)
}

func (r *slotDeviceRepository) read() ([]deviceRecord, error) {
	data, err := r.store.Get(r.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []deviceRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", r.key, err)
	}

	var records []deviceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode devices: %w", err)
	}
	return records, nil
}

func (r *slotDeviceRepository) write(records []deviceRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode devices: %w", err)
	}
	if err := r.store.Put(r.key, data); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", r.key, err)
	}
	return nil
}

func toDomain(rec deviceRecord) domain.DeviceToken {
	return domain.DeviceToken{
		ID:         rec.ID,
		Token:      rec.Token,
		DeviceInfo: rec.DeviceInfo,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}
