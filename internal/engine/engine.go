package engine

import (
	"errors"
	"fmt"
	"time"
)

var ErrValidation = errors.New("validation failed")
var ErrNotFound = errors.New("not found")
var ErrInvalidState = errors.New("invalid state")
var ErrForbidden = errors.New("forbidden")
var ErrStorage = errors.New("storage failure")
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrNoActiveRound is returned by EndRound when the room has nothing to end.
var ErrNoActiveRound = fmt.Errorf("%w: no active round", ErrInvalidState)

// StageError reports a command attempted in a stage that forbids it.
type StageError struct {
	Cmd   CommandType
	Stage Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s is not allowed while the room is %s", e.Cmd, e.Stage)
}

func (e *StageError) Is(target error) bool { return target == ErrInvalidState }

type Stage string

const (
	StageIdle     Stage = "idle"
	StageDrawing  Stage = "drawing"
	StageGuessing Stage = "guessing"
	StageFinished Stage = "finished"
)

type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinTime time.Time `json:"joinTime"`
}

type Answer struct {
	Text      string    `json:"text"`
	Correct   bool      `json:"correct"`
	Timestamp time.Time `json:"timestamp"`
	// Awarded survives resubmission so ScoreOncePerRound can see past overwrites.
	Awarded bool `json:"awarded,omitempty"`
}

type Round struct {
	RoundID   string            `json:"roundId"`
	DrawerID  string            `json:"drawerId"`
	Word      string            `json:"word"`
	ImageData string            `json:"imageData,omitempty"`
	Answers   map[string]Answer `json:"answers"`
	StartTime time.Time         `json:"startTime"`
	EndTime   *time.Time        `json:"endTime,omitempty"`
}

type Rules struct {
	// ScoreOncePerRound stops a player from being rewarded twice in one round.
	ScoreOncePerRound bool `json:"scoreOncePerRound"`
}

// Room is one game. Players are kept in join order; drawer rotation depends on it.
type Room struct {
	RoomID       string          `json:"roomId"`
	Players      []Player        `json:"players"`
	Scores       map[string]int  `json:"scores"`
	Ready        map[string]bool `json:"readyPlayers"`
	DrawerIndex  int             `json:"drawerIndex"`
	Stage        Stage           `json:"stage"`
	CurrentRound *Round          `json:"currentRound,omitempty"`
	LastRound    *Round          `json:"lastRound,omitempty"`
	GameHistory  []Round         `json:"gameHistory"`
	Rules        Rules           `json:"rules"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastActivity time.Time       `json:"lastActivity"`
}

type CommandType string

const (
	CmdJoin          CommandType = "Join"
	CmdLeave         CommandType = "Leave"
	CmdToggleReady   CommandType = "ToggleReady"
	CmdStartRound    CommandType = "StartRound"
	CmdSubmitDrawing CommandType = "SubmitDrawing"
	CmdSubmitAnswer  CommandType = "SubmitAnswer"
	CmdEndRound      CommandType = "EndRound"
)

/*
	CmdJoin          -> EvtPlayerJoined
	CmdLeave         -> EvtPlayerLeft (-> EvtRoomEmptied)
	CmdToggleReady   -> EvtReadyToggled (-> EvtRoundStarted when everyone is ready)
	CmdStartRound    -> EvtRoundStarted
	CmdSubmitDrawing -> EvtDrawingSubmitted (-> EvtGuessingOpened on the first one)
	CmdSubmitAnswer  -> EvtAnswerSubmitted (-> EvtScoreAwarded for guesser and drawer)
	CmdEndRound      -> EvtRoundEnded

	RoundID on a start command is the id of the new round. On CmdEndRound it is
	optional and names the round the caller expects to end.
*/

type Command struct {
	Type      CommandType
	PlayerID  string
	Name      string
	RoundID   string
	Word      string
	ImageData string
	Text      string
	Now       time.Time
}

type EventType string

const (
	EvtPlayerJoined     EventType = "PlayerJoined"
	EvtPlayerLeft       EventType = "PlayerLeft"
	EvtRoomEmptied      EventType = "RoomEmptied"
	EvtReadyToggled     EventType = "ReadyToggled"
	EvtRoundStarted     EventType = "RoundStarted"
	EvtDrawingSubmitted EventType = "DrawingSubmitted"
	EvtGuessingOpened   EventType = "GuessingOpened"
	EvtAnswerSubmitted  EventType = "AnswerSubmitted"
	EvtScoreAwarded     EventType = "ScoreAwarded"
	EvtRoundEnded       EventType = "RoundEnded"
)

// Event never carries the secret word so it can be logged and stored freely.
type Event struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId,omitempty"`
	RoundID  string    `json:"roundId,omitempty"`
	Ready    bool      `json:"ready,omitempty"`
	Count    int       `json:"count,omitempty"`
	Correct  bool      `json:"correct,omitempty"`
	Delta    int       `json:"delta,omitempty"`
	At       time.Time `json:"at"`
}

// Apply computes the snapshot that results from cmd. The input room is never
// modified; on error it is returned unchanged.
func Apply(r Room, cmd Command) ([]Event, Room, error) {
	s := r.Clone()

	switch cmd.Type {
	case CmdJoin:
		if cmd.PlayerID == "" {
			return nil, r, fmt.Errorf("%w: player id is required", ErrValidation)
		}
		if err := ValidatePlayerName(cmd.Name); err != nil {
			return nil, r, err
		}
		if s.HasPlayer(cmd.PlayerID) {
			return nil, r, fmt.Errorf("%w: player %s already joined", ErrValidation, cmd.PlayerID)
		}

		s.Players = append(s.Players, Player{ID: cmd.PlayerID, Name: CleanName(cmd.Name), JoinTime: cmd.Now})
		s.Scores[cmd.PlayerID] = 0
		s.LastActivity = cmd.Now

		return []Event{{Type: EvtPlayerJoined, PlayerID: cmd.PlayerID, At: cmd.Now}}, s, nil

	case CmdLeave:
		idx := s.PlayerIndex(cmd.PlayerID)
		if idx < 0 {
			return nil, r, fmt.Errorf("%w: player %s", ErrNotFound, cmd.PlayerID)
		}

		s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
		delete(s.Scores, cmd.PlayerID)
		delete(s.Ready, cmd.PlayerID)
		s.LastActivity = cmd.Now

		// The round stays open even when the drawer walks out; EndRound closes it.
		events := []Event{{Type: EvtPlayerLeft, PlayerID: cmd.PlayerID, At: cmd.Now}}
		if len(s.Players) == 0 {
			events = append(events, Event{Type: EvtRoomEmptied, At: cmd.Now})
		}
		return events, s, nil

	case CmdToggleReady:
		if s.Stage != StageIdle {
			return nil, r, &StageError{Cmd: cmd.Type, Stage: s.Stage}
		}
		if !s.HasPlayer(cmd.PlayerID) {
			return nil, r, fmt.Errorf("%w: player %s", ErrNotFound, cmd.PlayerID)
		}

		if s.Ready[cmd.PlayerID] {
			delete(s.Ready, cmd.PlayerID)
		} else {
			s.Ready[cmd.PlayerID] = true
		}
		s.LastActivity = cmd.Now

		events := []Event{{
			Type:     EvtReadyToggled,
			PlayerID: cmd.PlayerID,
			Ready:    s.Ready[cmd.PlayerID],
			Count:    len(s.Ready),
			At:       cmd.Now,
		}}

		if !allReady(s) {
			return events, s, nil
		}

		if cmd.Word == "" || cmd.RoundID == "" {
			return nil, r, fmt.Errorf("%w: a round id and word are required to start the round", ErrValidation)
		}

		drawerID, _ := CurrentDrawer(s)
		s.DrawerIndex = nextDrawerIndex(s)
		openRound(&s, cmd.RoundID, drawerID, cmd.Word, cmd.Now)

		events = append(events, Event{Type: EvtRoundStarted, PlayerID: drawerID, RoundID: cmd.RoundID, At: cmd.Now})
		return events, s, nil

	case CmdStartRound:
		if s.Stage != StageIdle {
			return nil, r, &StageError{Cmd: cmd.Type, Stage: s.Stage}
		}
		if !s.HasPlayer(cmd.PlayerID) {
			return nil, r, fmt.Errorf("%w: player %s", ErrNotFound, cmd.PlayerID)
		}
		if cmd.Word == "" || cmd.RoundID == "" {
			return nil, r, fmt.Errorf("%w: a round id and word are required to start the round", ErrValidation)
		}

		// Explicit starts bypass both the ready vote and the rotation.
		openRound(&s, cmd.RoundID, cmd.PlayerID, cmd.Word, cmd.Now)

		return []Event{{Type: EvtRoundStarted, PlayerID: cmd.PlayerID, RoundID: cmd.RoundID, At: cmd.Now}}, s, nil

	case CmdSubmitDrawing:
		if err := ValidateImageData(cmd.ImageData); err != nil {
			return nil, r, err
		}
		if s.CurrentRound == nil {
			return nil, r, fmt.Errorf("%w: no round in progress", ErrForbidden)
		}
		if s.CurrentRound.DrawerID != cmd.PlayerID {
			return nil, r, fmt.Errorf("%w: only the drawer can submit a drawing", ErrForbidden)
		}

		s.CurrentRound.ImageData = cmd.ImageData
		s.LastActivity = cmd.Now

		events := []Event{{Type: EvtDrawingSubmitted, PlayerID: cmd.PlayerID, RoundID: s.CurrentRound.RoundID, At: cmd.Now}}

		// Later submissions while guessing only replace the image.
		if s.Stage == StageDrawing {
			s.Stage = StageGuessing
			events = append(events, Event{Type: EvtGuessingOpened, RoundID: s.CurrentRound.RoundID, At: cmd.Now})
		}
		return events, s, nil

	case CmdSubmitAnswer:
		if s.CurrentRound == nil || s.Stage != StageGuessing {
			return nil, r, &StageError{Cmd: cmd.Type, Stage: s.Stage}
		}
		if !s.HasPlayer(cmd.PlayerID) {
			return nil, r, fmt.Errorf("%w: player %s", ErrNotFound, cmd.PlayerID)
		}
		if cmd.PlayerID == s.CurrentRound.DrawerID {
			return nil, r, fmt.Errorf("%w: the drawer cannot answer its own round", ErrForbidden)
		}
		if err := ValidateAnswerText(cmd.Text); err != nil {
			return nil, r, err
		}

		round := s.CurrentRound
		correct := IsCorrect(cmd.Text, round.Word, false)
		prev, answered := round.Answers[cmd.PlayerID]
		awarded := answered && prev.Awarded
		award := correct && !(s.Rules.ScoreOncePerRound && awarded)

		round.Answers[cmd.PlayerID] = Answer{
			Text:      CleanAnswer(cmd.Text),
			Correct:   correct,
			Timestamp: cmd.Now,
			Awarded:   awarded || award,
		}
		s.LastActivity = cmd.Now

		events := []Event{{
			Type:     EvtAnswerSubmitted,
			PlayerID: cmd.PlayerID,
			RoundID:  round.RoundID,
			Correct:  correct,
			At:       cmd.Now,
		}}

		if award {
			s.Scores[cmd.PlayerID]++
			events = append(events, Event{Type: EvtScoreAwarded, PlayerID: cmd.PlayerID, RoundID: round.RoundID, Delta: 1, At: cmd.Now})
			// A drawer who left keeps no score entry.
			if s.HasPlayer(round.DrawerID) {
				s.Scores[round.DrawerID]++
				events = append(events, Event{Type: EvtScoreAwarded, PlayerID: round.DrawerID, RoundID: round.RoundID, Delta: 1, At: cmd.Now})
			}
		}
		return events, s, nil

	case CmdEndRound:
		if s.CurrentRound == nil {
			return nil, r, ErrNoActiveRound
		}
		if cmd.RoundID != "" && cmd.RoundID != s.CurrentRound.RoundID {
			return nil, r, fmt.Errorf("%w: round %s is no longer active", ErrInvalidState, cmd.RoundID)
		}

		ended := *s.CurrentRound
		end := cmd.Now
		ended.EndTime = &end

		s.GameHistory = append(s.GameHistory, ended.clone())
		s.LastRound = &ended
		s.CurrentRound = nil
		s.Stage = StageIdle
		clear(s.Ready)
		s.LastActivity = cmd.Now

		return []Event{{Type: EvtRoundEnded, RoundID: ended.RoundID, PlayerID: ended.DrawerID, At: cmd.Now}}, s, nil

	default:
		return nil, r, ErrUnsupportedCommand
	}
}

func openRound(s *Room, roundID, drawerID, word string, now time.Time) {
	s.CurrentRound = &Round{
		RoundID:   roundID,
		DrawerID:  drawerID,
		Word:      word,
		Answers:   map[string]Answer{},
		StartTime: now,
	}
	s.LastRound = nil
	s.Stage = StageDrawing
	clear(s.Ready)
	s.LastActivity = now
}

func allReady(s Room) bool {
	return len(s.Players) >= 2 && len(s.Ready) == len(s.Players)
}
