package game

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Stats struct {
	TotalRooms   int    `json:"totalRooms"`
	ActiveRooms  int    `json:"activeRooms"`
	TotalPlayers int    `json:"totalPlayers"`
	LiveLobbies  int    `json:"liveLobbies"`
	WordsCount   int    `json:"wordsCount"`
	Version      string `json:"version"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, storageErr("list rooms", err)
	}

	st := Stats{TotalRooms: len(ids), Version: s.version}
	for _, id := range ids {
		room, ok, err := s.load(ctx, id)
		if err != nil {
			return Stats{}, err
		}
		if !ok {
			continue
		}
		st.TotalPlayers += len(room.Players)
		if !room.IsEmpty() {
			st.ActiveRooms++
		}
	}

	if st.WordsCount, err = s.words.Len(ctx); err != nil {
		return Stats{}, storageErr("count words", err)
	}
	if st.LiveLobbies, err = s.hub.Count(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Sweep deletes rooms that are empty or have been idle longer than the room
// TTL. Each room is checked and deleted inside its own critical section so a
// concurrent join either lands before the check or recreates the room after.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	return s.removeWhere(ctx, func(lastActivity time.Time, players int) bool {
		return players == 0 || now.Sub(lastActivity) > s.ttl
	})
}

// PurgeEmpty removes persisted rooms with no players, typically left behind
// by a crash between writes.
func (s *Service) PurgeEmpty(ctx context.Context) (int, error) {
	return s.removeWhere(ctx, func(_ time.Time, players int) bool {
		return players == 0
	})
}

func (s *Service) removeWhere(ctx context.Context, stale func(lastActivity time.Time, players int) bool) (int, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return 0, storageErr("list rooms", err)
	}

	removed := 0
	for _, id := range ids {
		err := s.withRoom(ctx, id, func() error {
			room, ok, err := s.load(ctx, id)
			if err != nil || !ok {
				return err
			}
			if !stale(room.LastActivity, len(room.Players)) {
				return nil
			}
			if err := s.store.Delete(ctx, id); err != nil {
				return storageErr("delete room", err)
			}
			removed++
			s.log.Info("room removed",
				zap.String("room_id", id),
				zap.Int("players", len(room.Players)),
				zap.Time("last_activity", room.LastActivity),
			)
			return nil
		})
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.Sweep(ctx, s.now())
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.log.Error("sweep rooms", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("swept rooms", zap.Int("removed", n))
			}
		}
	}
}
