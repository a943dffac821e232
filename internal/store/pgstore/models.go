package pgstore

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
)

// RoomRecord holds the full snapshot as JSON next to a few columns that are
// useful for queries and sweeps.
type RoomRecord struct {
	RoomID       string         `gorm:"primaryKey;size:32"`
	Stage        string         `gorm:"size:16;not null"`
	PlayerCount  int            `gorm:"not null"`
	Snapshot     datatypes.JSON `gorm:"type:jsonb;not null"`
	LastActivity time.Time      `gorm:"index;not null"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

func (RoomRecord) TableName() string { return "rooms" }

type EventRecord struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    string         `gorm:"size:32;index;not null"`
	RoundID   *string        `gorm:"size:64;index"`
	PlayerID  *string        `gorm:"size:64;index"`
	Type      string         `gorm:"size:32;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (EventRecord) TableName() string { return "room_events" }

func toRecord(room engine.Room) (RoomRecord, error) {
	data, err := json.Marshal(room)
	if err != nil {
		return RoomRecord{}, fmt.Errorf("encode room %s: %w", room.RoomID, err)
	}
	return RoomRecord{
		RoomID:       room.RoomID,
		Stage:        string(room.Stage),
		PlayerCount:  len(room.Players),
		Snapshot:     datatypes.JSON(data),
		LastActivity: room.LastActivity,
		CreatedAt:    room.CreatedAt,
	}, nil
}

func fromRecord(rec RoomRecord) (engine.Room, error) {
	var room engine.Room
	if err := json.Unmarshal(rec.Snapshot, &room); err != nil {
		return engine.Room{}, fmt.Errorf("decode room %s: %w", rec.RoomID, err)
	}
	return room, nil
}

func toEventRecords(roomID string, events []engine.Event) ([]EventRecord, error) {
	out := make([]EventRecord, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("encode event %s: %w", ev.Type, err)
		}
		out = append(out, EventRecord{
			RoomID:    roomID,
			RoundID:   optional(ev.RoundID),
			PlayerID:  optional(ev.PlayerID),
			Type:      string(ev.Type),
			Payload:   datatypes.JSON(payload),
			CreatedAt: ev.At,
		})
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
