package game

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"go.uber.org/zap"
)

var ErrNoFreeCode = errors.New("could not find a free room code")

const codeAttempts = 10

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// NewRoomCode returns a room id nobody is using. The room itself is only
// created by the first Join.
func (s *Service) NewRoomCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := s.genCode()
		if err != nil {
			return "", err
		}
		_, taken, err := s.load(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		s.log.Debug("collision on code, regenerating", zap.String("room_id", code))
	}
	return "", ErrNoFreeCode
}
