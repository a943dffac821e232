package hub

import (
	"context"
	"errors"

	"github.com/DoyleJ11/draw-guess-backend/internal/lobby"
)

var ErrHubClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

// Acquire returns the lobby for Code, creating it if needed, and takes a
// reference on it. Every Acquire must be paired with a Release.
type Acquire struct {
	Code  string
	Reply chan *lobby.Lobby
}

type Release struct {
	Code string
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type CountLobbies struct {
	Reply chan int
}

type ShutdownHub struct{}

func (Acquire) isHubMsg()      {}
func (Release) isHubMsg()      {}
func (GetLobby) isHubMsg()     {}
func (CountLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg()  {}

type entry struct {
	lb   *lobby.Lobby
	refs int
}

// Hub keeps at most one lobby per room id. A lobby lives while someone holds
// it and is closed by the Release that drops its last reference.
type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*entry
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Acquire:
				e := h.lobbies[msg.Code]
				if e == nil {
					e = &entry{lb: lobby.NewLobby(h.ctx, msg.Code)}
					h.lobbies[msg.Code] = e
				}
				e.refs++
				msg.Reply <- e.lb

			case Release:
				e := h.lobbies[msg.Code]
				if e == nil {
					break
				}
				e.refs--
				if e.refs <= 0 {
					e.lb.Close()
					delete(h.lobbies, msg.Code)
				}

			case GetLobby:
				var lb *lobby.Lobby
				if e := h.lobbies[msg.Code]; e != nil {
					lb = e.lb
				}
				msg.Reply <- lb // May be nil

			case CountLobbies:
				msg.Reply <- len(h.lobbies)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, e := range h.lobbies {
		e.lb.Close()
	}
	clear(h.lobbies)
	h.cancel()
}

// AcquireLobby is the blocking form of Acquire.
func (h *Hub) AcquireLobby(ctx context.Context, code string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	select {
	case h.inbox <- Acquire{Code: code, Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}

	select {
	case lb := <-reply:
		return lb, nil
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
}

// ReleaseLobby drops a reference taken by AcquireLobby. It never blocks on a
// closed hub.
func (h *Hub) ReleaseLobby(code string) {
	select {
	case h.inbox <- Release{Code: code}:
	case <-h.ctx.Done():
	}
}

// WithLobby runs fn inside the critical section of room code.
func (h *Hub) WithLobby(ctx context.Context, code string, fn func() error) error {
	lb, err := h.AcquireLobby(ctx, code)
	if err != nil {
		return err
	}
	defer h.ReleaseLobby(code)

	return lb.Do(ctx, fn)
}

// Count reports how many rooms currently have a live lobby.
func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case h.inbox <- CountLobbies{Reply: reply}:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-h.ctx.Done():
		return 0, ErrHubClosed
	}

	select {
	case n := <-reply:
		return n, nil
	case <-h.ctx.Done():
		return 0, ErrHubClosed
	}
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }
