package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
	"github.com/DoyleJ11/draw-guess-backend/internal/game"
	"github.com/DoyleJ11/draw-guess-backend/internal/hub"
	"github.com/DoyleJ11/draw-guess-backend/internal/store/memory"
	"github.com/DoyleJ11/draw-guess-backend/internal/words"
)

func newServer(t *testing.T, opts Options) http.Handler {
	t.Helper()
	h := hub.NewHub(context.Background())
	t.Cleanup(h.Shutdown)

	log := zaptest.NewLogger(t)
	svc := game.New(memory.New(), words.NewList([]string{"rocket"}), h, log)
	return SetupRoutes(svc, log, opts)
}

type response map[string]any

func do(t *testing.T, srv http.Handler, method, path string, body any) (int, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	var out response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	srv := newServer(t, Options{})
	code, body := do(t, srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.NotNil(t, body["timestamp"])
}

func TestGameFlowOverHTTP(t *testing.T) {
	srv := newServer(t, Options{})

	code, created := do(t, srv, http.MethodPost, "/api/create-room", nil)
	require.Equal(t, http.StatusCreated, code)
	roomID := created["roomId"].(string)
	require.Len(t, roomID, 6)

	code, alice := do(t, srv, http.MethodPost, "/api/join-room", joinRequest{RoomID: roomID, PlayerName: "Alice"})
	require.Equal(t, http.StatusOK, code, alice)
	aliceID := alice["playerId"].(string)

	_, bob := do(t, srv, http.MethodPost, "/api/join-room", joinRequest{RoomID: roomID, PlayerName: "Bob"})
	bobID := bob["playerId"].(string)

	_, first := do(t, srv, http.MethodPost, "/api/toggle-ready", playerRequest{RoomID: roomID, PlayerID: aliceID})
	assert.Equal(t, false, first["gameStarted"])

	_, second := do(t, srv, http.MethodPost, "/api/toggle-ready", playerRequest{RoomID: roomID, PlayerID: bobID})
	assert.Equal(t, true, second["gameStarted"])
	assert.Equal(t, aliceID, second["drawerId"])
	assert.NotContains(t, second, "word")
	roundID := second["roundId"].(string)

	code, state := do(t, srv, http.MethodGet, fmt.Sprintf("/api/state?roomId=%s&playerId=%s", roomID, bobID), nil)
	require.Equal(t, http.StatusOK, code)
	raw, _ := json.Marshal(state)
	assert.NotContains(t, string(raw), "rocket")

	_, state = do(t, srv, http.MethodGet, fmt.Sprintf("/api/state?roomId=%s&playerId=%s", roomID, aliceID), nil)
	raw, _ = json.Marshal(state)
	assert.Contains(t, string(raw), "rocket")

	code, _ = do(t, srv, http.MethodPost, "/api/post-drawing", drawingRequest{RoomID: roomID, PlayerID: bobID, ImageBase64: "data:image/png;base64,AAA"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, srv, http.MethodPost, "/api/post-drawing", drawingRequest{RoomID: roomID, PlayerID: aliceID, ImageBase64: "data:image/png;base64,AAA"})
	assert.Equal(t, http.StatusOK, code)

	_, ans := do(t, srv, http.MethodPost, "/api/submit-answer", answerRequest{RoomID: roomID, PlayerID: bobID, AnswerText: " ROCKET "})
	assert.Equal(t, true, ans["correct"])
	assert.Equal(t, float64(1), ans["scoreDelta"])

	code, _ = do(t, srv, http.MethodPost, "/api/end-round", endRoundRequest{RoomID: roomID, PlayerID: bobID})
	assert.Equal(t, http.StatusForbidden, code)

	code, ended := do(t, srv, http.MethodPost, "/api/end-round", endRoundRequest{RoomID: roomID, PlayerID: aliceID, RoundID: roundID})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, ended["ended"])

	_, stats := do(t, srv, http.MethodGet, "/api/stats", nil)
	st := stats["stats"].(map[string]any)
	assert.Equal(t, float64(1), st["totalRooms"])
	assert.Equal(t, float64(2), st["totalPlayers"])

	_, left := do(t, srv, http.MethodPost, "/api/leave-room", playerRequest{RoomID: roomID, PlayerID: aliceID})
	assert.Equal(t, true, left["removed"])
}

func TestErrorMapping(t *testing.T) {
	srv := newServer(t, Options{})

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing name", http.MethodPost, "/api/join-room", joinRequest{RoomID: "R1"}, http.StatusBadRequest},
		{"long name", http.MethodPost, "/api/join-room", joinRequest{RoomID: "R1", PlayerName: strings.Repeat("x", 21)}, http.StatusBadRequest},
		{"unknown room", http.MethodPost, "/api/toggle-ready", playerRequest{RoomID: "nope", PlayerID: "P1"}, http.StatusNotFound},
		{"state without room", http.MethodGet, "/api/state", nil, http.StatusBadRequest},
		{"state of unknown room", http.MethodGet, "/api/state?roomId=nope", nil, http.StatusNotFound},
		{"start without starter", http.MethodPost, "/api/start-round", startRequest{RoomID: "R1"}, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nothing", nil, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, code)
			assert.Equal(t, false, body["ok"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnswerWhileIdleReportsStage(t *testing.T) {
	srv := newServer(t, Options{})

	_, joined := do(t, srv, http.MethodPost, "/api/join-room", joinRequest{RoomID: "R1", PlayerName: "Alice"})
	code, body := do(t, srv, http.MethodPost, "/api/submit-answer", answerRequest{RoomID: "R1", PlayerID: joined["playerId"].(string), AnswerText: "hi"})

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "idle", body["stage"])
}

func TestMalformedAndOversizedBodies(t *testing.T) {
	srv := newServer(t, Options{MaxBodyBytes: 64})

	req := httptest.NewRequest(http.MethodPost, "/api/join-room", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := fmt.Sprintf(`{"roomId":"R1","playerName":"%s"}`, strings.Repeat("x", 200))
	req = httptest.NewRequest(http.MethodPost, "/api/join-room", strings.NewReader(big))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", engine.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: x", engine.ErrNotFound), http.StatusNotFound},
		{&engine.StageError{Cmd: engine.CmdToggleReady, Stage: engine.StageDrawing}, http.StatusConflict},
		{engine.ErrNoActiveRound, http.StatusConflict},
		{fmt.Errorf("%w: x", engine.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: redis down", engine.ErrStorage), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t, Options{AllowedOrigins: []string{"http://play.test"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/join-room", nil)
	req.Header.Set("Origin", "http://play.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "http://play.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
