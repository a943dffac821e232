// Package view renders a room for one requesting player. Everything a client
// polls for goes through Project, which is the only place the secret word is
// allowed to leave the server.
package view

import (
	"sort"
	"time"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
)

type PlayerView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinTime time.Time `json:"joinTime"`
	Score    int       `json:"score"`
	Ready    bool      `json:"isReady"`
}

type AnswerView struct {
	PlayerID  string    `json:"playerId"`
	Text      string    `json:"text"`
	Correct   bool      `json:"correct"`
	Timestamp time.Time `json:"timestamp"`
}

type RoundView struct {
	RoundID   string       `json:"roundId"`
	DrawerID  string       `json:"drawerId"`
	Word      string       `json:"word,omitempty"`
	ImageData string       `json:"imageData,omitempty"`
	Answers   []AnswerView `json:"answers"`
	StartTime time.Time    `json:"startTime"`
	EndTime   *time.Time   `json:"endTime,omitempty"`
}

type RoomView struct {
	RoomID       string         `json:"roomId"`
	Players      []PlayerView   `json:"players"`
	Scores       map[string]int `json:"scores"`
	Stage        engine.Stage   `json:"stage"`
	ReadyPlayers []string       `json:"readyPlayers"`
	DrawerIndex  int            `json:"drawerIndex"`
	NextDrawerID string         `json:"nextDrawerId,omitempty"`
	IsDrawer     bool           `json:"isDrawer"`
	CurrentRound *RoundView     `json:"currentRound,omitempty"`
	LastRound    *RoundView     `json:"lastRound,omitempty"`
	LastActivity time.Time      `json:"lastActivity"`
	ServerTime   time.Time      `json:"serverTime"`
}

// Project builds the view of room r as seen by requesterID. An empty
// requesterID is an anonymous viewer and sees what any guesser sees.
func Project(r engine.Room, requesterID string, now time.Time) RoomView {
	v := RoomView{
		RoomID:       r.RoomID,
		Players:      make([]PlayerView, 0, len(r.Players)),
		Scores:       make(map[string]int, len(r.Scores)),
		Stage:        r.Stage,
		ReadyPlayers: r.ReadyPlayers(),
		DrawerIndex:  r.DrawerIndex,
		LastActivity: r.LastActivity,
		ServerTime:   now,
	}

	for _, p := range r.Players {
		v.Players = append(v.Players, PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			JoinTime: p.JoinTime,
			Score:    r.Scores[p.ID],
			Ready:    r.IsReady(p.ID),
		})
	}
	for id, s := range r.Scores {
		v.Scores[id] = s
	}

	if r.CurrentRound == nil {
		v.NextDrawerID, _ = engine.CurrentDrawer(r)
	}

	if cr := r.CurrentRound; cr != nil {
		isDrawer := requesterID != "" && requesterID == cr.DrawerID
		v.IsDrawer = isDrawer

		rv := &RoundView{
			RoundID:   cr.RoundID,
			DrawerID:  cr.DrawerID,
			Answers:   answers(cr.Answers, requesterID, isDrawer),
			StartTime: cr.StartTime,
		}
		if isDrawer {
			rv.Word = cr.Word
		}
		if r.Stage == engine.StageGuessing {
			rv.ImageData = cr.ImageData
		}
		v.CurrentRound = rv
	}

	// The last round has ended, so its word and answers are public.
	if lr := r.LastRound; lr != nil {
		v.LastRound = &RoundView{
			RoundID:   lr.RoundID,
			DrawerID:  lr.DrawerID,
			Word:      lr.Word,
			ImageData: lr.ImageData,
			Answers:   answers(lr.Answers, "", true),
			StartTime: lr.StartTime,
			EndTime:   lr.EndTime,
		}
	}

	return v
}

// answers lists answers oldest first. A correct answer spells the word, so its
// text is only shown to its author and to the drawer.
func answers(in map[string]engine.Answer, requesterID string, isDrawer bool) []AnswerView {
	out := make([]AnswerView, 0, len(in))
	for pid, a := range in {
		text := a.Text
		if a.Correct && !isDrawer && pid != requesterID {
			text = ""
		}
		out = append(out, AnswerView{PlayerID: pid, Text: text, Correct: a.Correct, Timestamp: a.Timestamp})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
