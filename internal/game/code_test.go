package game

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), code)
}

func TestNewRoomCode_SkipsTakenCodes(t *testing.T) {
	codes := []string{"TAKEN1", "FREE01"}
	f := newFixture(t, WithCodeGenerator(func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}))
	f.join(t, "TAKEN1", "Alice")

	code, err := f.svc.NewRoomCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "FREE01", code)
}

func TestNewRoomCode_GivesUp(t *testing.T) {
	f := newFixture(t, WithCodeGenerator(func() (string, error) { return "SAME01", nil }))
	f.join(t, "SAME01", "Alice")

	_, err := f.svc.NewRoomCode(context.Background())
	assert.ErrorIs(t, err, ErrNoFreeCode)
}
