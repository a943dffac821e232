package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/draw-guess-backend/internal/game"
	"github.com/DoyleJ11/draw-guess-backend/internal/view"
)

// Game is the part of game.Service the HTTP layer calls.
type Game interface {
	NewRoomCode(ctx context.Context) (string, error)
	Join(ctx context.Context, roomID, name string) (game.JoinResult, error)
	Leave(ctx context.Context, roomID, playerID string) (bool, error)
	ToggleReady(ctx context.Context, roomID, playerID string) (game.ReadyResult, error)
	StartRound(ctx context.Context, roomID, starterID, word string) (game.StartResult, error)
	SubmitDrawing(ctx context.Context, roomID, playerID, imageData string) error
	SubmitAnswer(ctx context.Context, roomID, playerID, text string) (game.AnswerResult, error)
	EndRound(ctx context.Context, roomID, callerID, roundID string) (bool, error)
	State(ctx context.Context, roomID, playerID string) (view.RoomView, error)
	Stats(ctx context.Context) (game.Stats, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type joinRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type playerRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type startRequest struct {
	RoomID    string `json:"roomId"`
	StarterID string `json:"starterId"`
	Word      string `json:"word"`
}

type drawingRequest struct {
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	ImageBase64 string `json:"imageBase64"`
}

type answerRequest struct {
	RoomID     string `json:"roomId"`
	PlayerID   string `json:"playerId"`
	AnswerText string `json:"answerText"`
}

type endRoundRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	RoundID  string `json:"roundId"`
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeOK(w, envelope{"timestamp": time.Now().UnixMilli()})
}

func CreateRoom(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := g.NewRoomCode(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(envelope{"ok": true, "roomId": code})
	}
}

func JoinRoom(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		if err := required(map[string]string{"roomId": req.RoomID, "playerName": req.PlayerName}); err != nil {
			writeError(w, log, err)
			return
		}

		res, err := g.Join(r.Context(), req.RoomID, req.PlayerName)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, envelope{
			"playerId": res.PlayerID,
			"roomId":   res.RoomID,
			"players":  res.Room.Players,
			"state":    res.Room,
		})
	}
}

func LeaveRoom(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		if err := required(map[string]string{"roomId": req.RoomID, "playerId": req.PlayerID}); err != nil {
			writeError(w, log, err)
			return
		}

		removed, err := g.Leave(r.Context(), req.RoomID, req.PlayerID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, envelope{"removed": removed})
	}
}

func RoomState(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("roomId")
		if err := required(map[string]string{"roomId": roomID}); err != nil {
			writeError(w, log, err)
			return
		}

		v, err := g.State(r.Context(), roomID, r.URL.Query().Get("playerId"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, envelope{"room": v, "serverTime": v.ServerTime.UnixMilli()})
	}
}

func ToggleReady(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		if err := required(map[string]string{"roomId": req.RoomID, "playerId": req.PlayerID}); err != nil {
			writeError(w, log, err)
			return
		}

		res, err := g.ToggleReady(r.Context(), req.RoomID, req.PlayerID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		body := envelope{
			"isReady":      res.IsReady,
			"readyCount":   res.ReadyCount,
			"totalPlayers": res.TotalPlayers,
			"gameStarted":  res.GameStarted,
		}
		if res.GameStarted {
			body["roundId"] = res.RoundID
			body["drawerId"] = res.DrawerID
			if res.Word != "" {
				body["word"] = res.Word
			}
		}
		writeOK(w, body)
	}
}

func StartRound(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		if err := required(map[string]string{"roomId": req.RoomID, "starterId": req.StarterID}); err != nil {
			writeError(w, log, err)
			return
		}

		res, err := g.StartRound(r.Context(), req.RoomID, req.StarterID, req.Word)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, envelope{"roundId": res.RoundID, "word": res.Word})
	}
}

func PostDrawing(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req drawingRequest
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		if err := required(map[string]string{"roomId": req.RoomID, "playerId": req.PlayerID, "imageBase64": req.ImageBase64}); err != nil {
			writeError(w, log, err)
			return
		}

		if err := g.SubmitDrawing(r.Context(), req.RoomID, req.PlayerID, req.ImageBase64); err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, nil)
	}
}

func SubmitAnswer(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		if err := required(map[string]string{"roomId": req.RoomID, "playerId": req.PlayerID, "answerText": req.AnswerText}); err != nil {
			writeError(w, log, err)
			return
		}

		res, err := g.SubmitAnswer(r.Context(), req.RoomID, req.PlayerID, req.AnswerText)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, envelope{"correct": res.Correct, "scoreDelta": res.ScoreDelta})
	}
}

// EndRound requires the caller's player id; only the drawer may end a round
// unless the drawer has left.
func EndRound(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req endRoundRequest
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		if err := required(map[string]string{"roomId": req.RoomID, "playerId": req.PlayerID}); err != nil {
			writeError(w, log, err)
			return
		}

		ended, err := g.EndRound(r.Context(), req.RoomID, req.PlayerID, req.RoundID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, envelope{"ended": ended})
	}
}

func Stats(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := g.Stats(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, envelope{"stats": st})
	}
}

func Cleanup(g Game, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := g.Sweep(r.Context(), time.Now())
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeOK(w, envelope{"cleanedCount": n})
	}
}
