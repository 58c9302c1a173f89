package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Key       string         `gorm:"column:storage_key;primaryKey;size:191"`
	Value     datatypes.JSON `gorm:"column:value"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// Database stores each key as one row of kv_entries.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) (*Database, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Database{db: db}, nil
}

func (d *Database) Load(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := d.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (d *Database) Save(ctx context.Context, key string, value []byte) error {
	return d.SaveBatch(ctx, map[string][]byte{key: value})
}

func (d *Database) SaveBatch(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]Entry, 0, len(entries))
	for k, v := range entries {
		rows = append(rows, Entry{Key: k, Value: datatypes.JSON(v), UpdatedAt: now})
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "storage_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
