package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
)

func TestStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.Get(ctx, "R1")
	require.NoError(t, err)
	assert.False(t, ok)

	room := engine.NewRoom("R1", engine.Rules{}, time.Now())
	room.Players = append(room.Players, engine.Player{ID: "P1", Name: "Alice"})
	room.Scores["P1"] = 3
	require.NoError(t, s.Save(ctx, room))
	require.NoError(t, s.Save(ctx, engine.NewRoom("A0", engine.Rules{}, time.Now())))

	got, ok, err := s.Get(ctx, "R1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Scores["P1"])

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A0", "R1"}, ids)

	require.NoError(t, s.Delete(ctx, "R1"))
	_, ok, _ = s.Get(ctx, "R1")
	assert.False(t, ok)
}

func TestStore_IsolatesSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	room := engine.NewRoom("R1", engine.Rules{}, time.Now())
	room.Scores["P1"] = 1
	require.NoError(t, s.Save(ctx, room))

	room.Scores["P1"] = 100
	got, _, _ := s.Get(ctx, "R1")
	got.Scores["P1"] = 50

	again, _, _ := s.Get(ctx, "R1")
	assert.Equal(t, 1, again.Scores["P1"])
}
