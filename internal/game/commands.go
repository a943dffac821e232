package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
	"github.com/DoyleJ11/draw-guess-backend/internal/view"
)

type JoinResult struct {
	PlayerID string        `json:"playerId"`
	RoomID   string        `json:"roomId"`
	Room     view.RoomView `json:"room"`
}

type ReadyResult struct {
	IsReady      bool   `json:"isReady"`
	ReadyCount   int    `json:"readyCount"`
	TotalPlayers int    `json:"totalPlayers"`
	GameStarted  bool   `json:"gameStarted"`
	RoundID      string `json:"roundId,omitempty"`
	DrawerID     string `json:"drawerId,omitempty"`
	Word         string `json:"word,omitempty"` // only for the drawer
}

type StartResult struct {
	RoundID  string `json:"roundId"`
	DrawerID string `json:"drawerId"`
	Word     string `json:"word"`
}

type AnswerResult struct {
	Correct    bool `json:"correct"`
	ScoreDelta int  `json:"scoreDelta"`
}

func (s *Service) Join(ctx context.Context, roomID, name string) (JoinResult, error) {
	roomID = roomKey(roomID)
	if err := engine.ValidateRoomID(roomID); err != nil {
		return JoinResult{}, err
	}

	var res JoinResult
	err := s.withRoom(ctx, roomID, func() error {
		room, err := s.getOrCreate(ctx, roomID)
		if err != nil {
			return err
		}

		now := s.now()
		playerID := s.newID()
		events, next, err := engine.Apply(room, engine.Command{Type: engine.CmdJoin, PlayerID: playerID, Name: name, Now: now})
		if err != nil {
			return err
		}
		if err := s.commit(ctx, next, events); err != nil {
			return err
		}

		res = JoinResult{PlayerID: playerID, RoomID: roomID, Room: view.Project(next, playerID, now)}
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}

	s.log.Info("player joined", zap.String("room_id", roomID), zap.String("player_id", res.PlayerID))
	return res, nil
}

// Leave removes playerID from the room. It reports false without error when
// the room or the player does not exist.
func (s *Service) Leave(ctx context.Context, roomID, playerID string) (bool, error) {
	roomID = roomKey(roomID)
	removed := false
	err := s.withRoom(ctx, roomID, func() error {
		room, ok, err := s.load(ctx, roomID)
		if err != nil || !ok {
			return err
		}

		events, next, err := engine.Apply(room, engine.Command{Type: engine.CmdLeave, PlayerID: playerID, Now: s.now()})
		if errors.Is(err, engine.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.commit(ctx, next, events); err != nil {
			return err
		}
		removed = true

		if engine.ContainsEvent(events, engine.EvtRoomEmptied) {
			s.log.Info("room emptied", zap.String("room_id", roomID))
		}
		return nil
	})
	return removed, err
}

func (s *Service) ToggleReady(ctx context.Context, roomID, playerID string) (ReadyResult, error) {
	roomID = roomKey(roomID)
	var res ReadyResult
	err := s.withRoom(ctx, roomID, func() error {
		room, err := s.mustLoad(ctx, roomID)
		if err != nil {
			return err
		}

		cmd := engine.Command{Type: engine.CmdToggleReady, PlayerID: playerID, Now: s.now()}
		// Only pay for a word when this toggle is the one that starts the round.
		if engine.ReadyCompletes(room, playerID) {
			word, err := s.nextWord(ctx)
			if err != nil {
				return err
			}
			cmd.Word = word
			cmd.RoundID = s.newRoundID()
		}

		events, next, err := engine.Apply(room, cmd)
		if err != nil {
			return err
		}
		if err := s.commit(ctx, next, events); err != nil {
			return err
		}

		toggled, _ := engine.FindEvent(events, engine.EvtReadyToggled)
		res = ReadyResult{
			IsReady:      toggled.Ready,
			ReadyCount:   toggled.Count,
			TotalPlayers: len(next.Players),
		}
		if started, ok := engine.FindEvent(events, engine.EvtRoundStarted); ok {
			res.GameStarted = true
			res.RoundID = started.RoundID
			res.DrawerID = started.PlayerID
			if playerID == started.PlayerID {
				res.Word = next.CurrentRound.Word
			}
			s.log.Info("round started",
				zap.String("room_id", roomID),
				zap.String("round_id", started.RoundID),
				zap.String("player_id", started.PlayerID),
			)
		}
		return nil
	})
	return res, err
}

// StartRound opens a round drawn by starterID, skipping the ready vote. An
// empty word is replaced by one from the word source.
func (s *Service) StartRound(ctx context.Context, roomID, starterID, word string) (StartResult, error) {
	roomID = roomKey(roomID)
	var res StartResult
	err := s.withRoom(ctx, roomID, func() error {
		room, err := s.mustLoad(ctx, roomID)
		if err != nil {
			return err
		}

		word := strings.TrimSpace(word)
		if word == "" && room.Stage == engine.StageIdle && room.HasPlayer(starterID) {
			if word, err = s.nextWord(ctx); err != nil {
				return err
			}
		}

		cmd := engine.Command{
			Type:     engine.CmdStartRound,
			PlayerID: starterID,
			RoundID:  s.newRoundID(),
			Word:     word,
			Now:      s.now(),
		}
		events, next, err := engine.Apply(room, cmd)
		if err != nil {
			return err
		}
		if err := s.commit(ctx, next, events); err != nil {
			return err
		}

		res = StartResult{RoundID: next.CurrentRound.RoundID, DrawerID: starterID, Word: next.CurrentRound.Word}
		s.log.Info("round started",
			zap.String("room_id", roomID),
			zap.String("round_id", res.RoundID),
			zap.String("player_id", starterID),
		)
		return nil
	})
	return res, err
}

func (s *Service) SubmitDrawing(ctx context.Context, roomID, playerID, imageData string) error {
	roomID = roomKey(roomID)
	return s.withRoom(ctx, roomID, func() error {
		room, err := s.mustLoad(ctx, roomID)
		if err != nil {
			return err
		}

		events, next, err := engine.Apply(room, engine.Command{
			Type:      engine.CmdSubmitDrawing,
			PlayerID:  playerID,
			ImageData: imageData,
			Now:       s.now(),
		})
		if err != nil {
			return err
		}
		return s.commit(ctx, next, events)
	})
}

func (s *Service) SubmitAnswer(ctx context.Context, roomID, playerID, text string) (AnswerResult, error) {
	roomID = roomKey(roomID)
	var res AnswerResult
	err := s.withRoom(ctx, roomID, func() error {
		room, err := s.mustLoad(ctx, roomID)
		if err != nil {
			return err
		}

		events, next, err := engine.Apply(room, engine.Command{
			Type:     engine.CmdSubmitAnswer,
			PlayerID: playerID,
			Text:     text,
			Now:      s.now(),
		})
		if err != nil {
			return err
		}
		if err := s.commit(ctx, next, events); err != nil {
			return err
		}

		ev, _ := engine.FindEvent(events, engine.EvtAnswerSubmitted)
		res.Correct = ev.Correct
		for _, e := range events {
			if e.Type == engine.EvtScoreAwarded && e.PlayerID == playerID {
				res.ScoreDelta += e.Delta
			}
		}
		return nil
	})
	return res, err
}

// EndRound closes the current round. callerID, when set, must be the drawer
// unless the drawer has already left the room. roundID, when set, must name
// the current round. It reports false without error when no round is open.
func (s *Service) EndRound(ctx context.Context, roomID, callerID, roundID string) (bool, error) {
	roomID = roomKey(roomID)
	ended := false
	err := s.withRoom(ctx, roomID, func() error {
		room, err := s.mustLoad(ctx, roomID)
		if err != nil {
			return err
		}

		if cr := room.CurrentRound; cr != nil && callerID != "" && callerID != cr.DrawerID && room.HasPlayer(cr.DrawerID) {
			return fmt.Errorf("%w: only the drawer can end the round", engine.ErrForbidden)
		}

		events, next, err := engine.Apply(room, engine.Command{Type: engine.CmdEndRound, RoundID: roundID, Now: s.now()})
		if errors.Is(err, engine.ErrNoActiveRound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.commit(ctx, next, events); err != nil {
			return err
		}
		ended = true

		s.log.Info("round ended",
			zap.String("room_id", roomID),
			zap.String("round_id", next.LastRound.RoundID),
			zap.Int("answers", len(next.LastRound.Answers)),
		)
		return nil
	})
	return ended, err
}

// State returns the room as playerID is allowed to see it. A poll from a
// member counts as activity, so a room that is only being watched is not
// swept and its store TTL is refreshed.
func (s *Service) State(ctx context.Context, roomID, playerID string) (view.RoomView, error) {
	roomID = roomKey(roomID)
	var v view.RoomView
	err := s.withRoom(ctx, roomID, func() error {
		room, err := s.mustLoad(ctx, roomID)
		if err != nil {
			return err
		}

		now := s.now()
		if room.HasPlayer(playerID) {
			room.LastActivity = now
			if err := s.store.Save(ctx, room); err != nil {
				return storageErr("save room", err)
			}
		}
		v = view.Project(room, playerID, now)
		return nil
	})
	return v, err
}

// roomKey is the canonical form of a client-supplied room id.
func roomKey(roomID string) string { return strings.TrimSpace(roomID) }

func (s *Service) nextWord(ctx context.Context) (string, error) {
	word, err := s.words.Next(ctx)
	if err != nil {
		return "", storageErr("next word", err)
	}
	return word, nil
}
