// Package pgstore keeps rooms and their event history in Postgres via gorm.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
)

type Store struct {
	db *gorm.DB
}

// Open connects and migrates the rooms and room_events tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&RoomRecord{}, &EventRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, roomID string) (engine.Room, bool, error) {
	var rec RoomRecord
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.Room{}, false, nil
	}
	if err != nil {
		return engine.Room{}, false, err
	}

	room, err := fromRecord(rec)
	if err != nil {
		return engine.Room{}, false, err
	}
	return room, true, nil
}

// Save upserts by primary key.
func (s *Store) Save(ctx context.Context, room engine.Room) error {
	rec, err := toRecord(room)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(&rec).Error
}

func (s *Store) Delete(ctx context.Context, roomID string) error {
	return s.db.WithContext(ctx).Where("room_id = ?", roomID).Delete(&RoomRecord{}).Error
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&RoomRecord{}).Order("room_id").Pluck("room_id", &ids).Error
	return ids, err
}

// Append writes one row per event. Rows outlive the room they belong to.
func (s *Store) Append(ctx context.Context, roomID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	recs, err := toEventRecords(roomID, events)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&recs).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
