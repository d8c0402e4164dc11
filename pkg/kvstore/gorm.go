package kvstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Slot is the row backing one key in SQL databases reached through GORM.
type Slot struct {
	Key       string    `gorm:"primaryKey"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Slot) TableName() string {
	return "kv_slots"
}

// Gorm stores slots through GORM; used with the Postgres driver.
type Gorm struct {
	db *gorm.DB
}

// OpenPostgres connects to Postgres with the given DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_slots: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var slot Slot
	err := g.db.Where("key = ?", key).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return slot.Value, nil
}

// Put is a single INSERT ... ON CONFLICT (key) DO UPDATE statement.
func (g *Gorm) Put(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	slot := &Slot{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(slot).Error
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
