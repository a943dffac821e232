package engine

import (
	"maps"
	"slices"
	"time"
)

func NewRoom(roomID string, rules Rules, now time.Time) Room {
	return Room{
		RoomID:       roomID,
		Players:      []Player{},
		Scores:       map[string]int{},
		Ready:        map[string]bool{},
		Stage:        StageIdle,
		GameHistory:  []Round{},
		Rules:        rules,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Clone returns a deep copy so transitions can be computed without touching
// the stored snapshot.
func (r Room) Clone() Room {
	c := r
	c.Players = slices.Clone(r.Players)
	if c.Players == nil {
		c.Players = []Player{}
	}
	c.Scores = maps.Clone(r.Scores)
	if c.Scores == nil {
		c.Scores = map[string]int{}
	}
	c.Ready = maps.Clone(r.Ready)
	if c.Ready == nil {
		c.Ready = map[string]bool{}
	}
	if r.CurrentRound != nil {
		cr := r.CurrentRound.clone()
		c.CurrentRound = &cr
	}
	if r.LastRound != nil {
		lr := r.LastRound.clone()
		c.LastRound = &lr
	}
	c.GameHistory = make([]Round, 0, len(r.GameHistory))
	for _, h := range r.GameHistory {
		c.GameHistory = append(c.GameHistory, h.clone())
	}
	return c
}

func (rd Round) clone() Round {
	c := rd
	c.Answers = maps.Clone(rd.Answers)
	if c.Answers == nil {
		c.Answers = map[string]Answer{}
	}
	if rd.EndTime != nil {
		end := *rd.EndTime
		c.EndTime = &end
	}
	return c
}

func (r Room) PlayerIndex(playerID string) int {
	return slices.IndexFunc(r.Players, func(p Player) bool { return p.ID == playerID })
}

func (r Room) HasPlayer(playerID string) bool {
	return r.PlayerIndex(playerID) >= 0
}

func (r Room) IsEmpty() bool {
	return len(r.Players) == 0
}

func (r Room) IsReady(playerID string) bool {
	return r.Ready[playerID]
}

// ReadyPlayers lists ready players in join order.
func (r Room) ReadyPlayers() []string {
	ids := make([]string, 0, len(r.Ready))
	for _, p := range r.Players {
		if r.Ready[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// ReadyCompletes reports whether toggling playerID would make everyone ready
// and therefore start a round.
func ReadyCompletes(r Room, playerID string) bool {
	if r.Stage != StageIdle || !r.HasPlayer(playerID) || r.Ready[playerID] {
		return false
	}
	return len(r.Players) >= 2 && len(r.Ready)+1 == len(r.Players)
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func FindEvent(events []Event, eventType EventType) (Event, bool) {
	for _, event := range events {
		if event.Type == eventType {
			return event, true
		}
	}
	return Event{}, false
}
