package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
	"github.com/DoyleJ11/draw-guess-backend/internal/hub"
)

// RoomStore persists room snapshots by id. Implementations live under
// internal/store.
type RoomStore interface {
	Get(ctx context.Context, roomID string) (engine.Room, bool, error)
	Save(ctx context.Context, room engine.Room) error
	Delete(ctx context.Context, roomID string) error
	List(ctx context.Context) ([]string, error)
}

type WordSource interface {
	Next(ctx context.Context) (string, error)
	Len(ctx context.Context) (int, error)
}

// EventLog receives the events of every committed transition.
type EventLog interface {
	Append(ctx context.Context, roomID string, events []engine.Event) error
}

type nopEventLog struct{}

func (nopEventLog) Append(context.Context, string, []engine.Event) error { return nil }

// Service runs every room operation inside that room's lobby so reads and
// writes of one room never interleave.
type Service struct {
	store      RoomStore
	words      WordSource
	events     EventLog
	hub        *hub.Hub
	log        *zap.Logger
	now        func() time.Time
	newID      func() string
	newRoundID func() string
	genCode    func() (string, error)
	rules      engine.Rules
	ttl        time.Duration
	version    string
}

type Option func(*Service)

func WithEventLog(l EventLog) Option { return func(s *Service) { s.events = l } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDs(player, round func() string) Option {
	return func(s *Service) {
		s.newID = player
		s.newRoundID = round
	}
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.genCode = gen }
}

func WithRules(r engine.Rules) Option { return func(s *Service) { s.rules = r } }

// WithRoomTTL sets how long a room may sit idle before Sweep removes it.
func WithRoomTTL(d time.Duration) Option { return func(s *Service) { s.ttl = d } }

func WithVersion(v string) Option { return func(s *Service) { s.version = v } }

const DefaultRoomTTL = 30 * time.Minute

func New(store RoomStore, words WordSource, h *hub.Hub, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:      store,
		words:      words,
		events:     nopEventLog{},
		hub:        h,
		log:        log.Named("game"),
		now:        time.Now,
		newID:      uuid.NewString,
		newRoundID: newRoundID,
		genCode:    GenerateCode,
		ttl:        DefaultRoomTTL,
		version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Round ids are v7 so they sort by creation time.
func newRoundID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// withRoom runs fn inside the critical section of roomID.
func (s *Service) withRoom(ctx context.Context, roomID string, fn func() error) error {
	return s.hub.WithLobby(ctx, roomID, fn)
}

func (s *Service) load(ctx context.Context, roomID string) (engine.Room, bool, error) {
	room, ok, err := s.store.Get(ctx, roomID)
	if err != nil {
		return engine.Room{}, false, storageErr("load room", err)
	}
	return room, ok, nil
}

func (s *Service) mustLoad(ctx context.Context, roomID string) (engine.Room, error) {
	room, ok, err := s.load(ctx, roomID)
	if err != nil {
		return engine.Room{}, err
	}
	if !ok {
		return engine.Room{}, fmt.Errorf("%w: room %s", engine.ErrNotFound, roomID)
	}
	return room, nil
}

// getOrCreate returns the stored room or a fresh unsaved one. A new room is
// only written once a player is in it.
func (s *Service) getOrCreate(ctx context.Context, roomID string) (engine.Room, error) {
	room, ok, err := s.load(ctx, roomID)
	if err != nil {
		return engine.Room{}, err
	}
	if !ok {
		return engine.NewRoom(roomID, s.rules, s.now()), nil
	}
	return room, nil
}

// commit persists the result of a transition. Empty rooms are deleted, never
// saved.
func (s *Service) commit(ctx context.Context, room engine.Room, events []engine.Event) error {
	if room.IsEmpty() {
		if err := s.store.Delete(ctx, room.RoomID); err != nil {
			return storageErr("delete room", err)
		}
	} else if err := s.store.Save(ctx, room); err != nil {
		return storageErr("save room", err)
	}

	if len(events) == 0 {
		return nil
	}
	if err := s.events.Append(ctx, room.RoomID, events); err != nil {
		// The snapshot is already committed; a missing log line is not fatal.
		s.log.Warn("append events", zap.String("room_id", room.RoomID), zap.Error(err))
	}
	for _, ev := range events {
		s.log.Debug("event",
			zap.String("room_id", room.RoomID),
			zap.String("type", string(ev.Type)),
			zap.String("player_id", ev.PlayerID),
			zap.String("round_id", ev.RoundID),
		)
	}
	return nil
}

// storageErr tags store failures as ErrStorage. Context errors pass through so
// callers can tell a cancelled request from a broken backend.
func storageErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", engine.ErrStorage, op, err)
}
