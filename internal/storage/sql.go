package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Slot is one named blob row.
type Slot struct {
	Name      string `gorm:"primaryKey;column:name"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

func (Slot) TableName() string {
	return "tracker_slots"
}

// SQL stores slots in a relational database through gorm.
type SQL struct {
	db *gorm.DB
}

// NewSQL migrates the slot table and returns a storage on top of db.
func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", Slot{}.TableName(), err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var row Slot
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	row := Slot{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("name = ?", key).Delete(&Slot{}).Error
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
