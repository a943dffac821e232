// Package words provides the secret words rounds are played with.
package words

import (
	"context"
	"errors"
	"math/rand"
)

var ErrEmpty = errors.New("word list is empty")

// Builtin is used when no other source is configured.
var Builtin = []string{
	"apple", "banana", "car", "airplane", "house", "sun", "moon", "star",
	"cat", "dog", "fish", "bird", "tree", "flower", "butterfly", "bee",
	"computer", "phone", "book", "pencil", "cup", "table", "chair", "bed",
	"umbrella", "hat", "glasses", "watch", "key", "wallet", "backpack", "shoe",
}

// List picks uniformly from a fixed set of words.
type List struct {
	words []string
	pick  func(n int) int
}

func NewList(words []string) *List {
	return &List{words: words, pick: rand.Intn}
}

func (l *List) Next(_ context.Context) (string, error) {
	if len(l.words) == 0 {
		return "", ErrEmpty
	}
	return l.words[l.pick(len(l.words))], nil
}

func (l *List) Len(_ context.Context) (int, error) {
	return len(l.words), nil
}
