package engine

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxRoomIDLen     = 32
	MaxPlayerNameLen = 20
	MaxAnswerLen     = 50
)

var imageDataPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg|gif|webp);base64,`)

var spaces = regexp.MustCompile(`\s+`)

func ValidateRoomID(roomID string) error {
	id := strings.TrimSpace(roomID)
	if id == "" {
		return fmt.Errorf("%w: room id is required", ErrValidation)
	}
	if utf8.RuneCountInString(id) > MaxRoomIDLen {
		return fmt.Errorf("%w: room id is longer than %d characters", ErrValidation, MaxRoomIDLen)
	}
	return nil
}

func ValidatePlayerName(name string) error {
	n := CleanName(name)
	if n == "" {
		return fmt.Errorf("%w: player name is required", ErrValidation)
	}
	if utf8.RuneCountInString(n) > MaxPlayerNameLen {
		return fmt.Errorf("%w: player name is longer than %d characters", ErrValidation, MaxPlayerNameLen)
	}
	return nil
}

func ValidateAnswerText(text string) error {
	t := CleanAnswer(text)
	if t == "" {
		return fmt.Errorf("%w: answer is required", ErrValidation)
	}
	if utf8.RuneCountInString(t) > MaxAnswerLen {
		return fmt.Errorf("%w: answer is longer than %d characters", ErrValidation, MaxAnswerLen)
	}
	return nil
}

// ValidateImageData only looks at the data URL tag; pixels are never decoded.
func ValidateImageData(data string) error {
	if !imageDataPrefix.MatchString(data) {
		return fmt.Errorf("%w: image must be a base64 data:image/ URL", ErrValidation)
	}
	return nil
}

func CleanName(name string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(name), " ")
}

func CleanAnswer(text string) string {
	return strings.TrimSpace(text)
}
