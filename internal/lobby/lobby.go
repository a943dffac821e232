package lobby

import (
	"context"
	"errors"
)

// ErrClosed is returned when work is submitted to a lobby that has shut down.
var ErrClosed = errors.New("lobby closed")

type Msg interface{ isLobbyMsg() }

// Exec runs Fn inside the room's critical section and sends its result on Reply.
type Exec struct {
	Fn    func() error
	Reply chan error
}

func (Exec) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type View struct {
	RoomID  string
	Version int // successful Execs so far
	Failed  int
}

// Lobby owns one room id. Every read-compute-write on that room goes through
// its loop so the work never interleaves.
type Lobby struct {
	roomID  string
	inbox   chan Msg
	version int
	failed  int
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewLobby(parent context.Context, roomID string) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		roomID:  roomID,
		inbox:   make(chan Msg, 64),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.stopped)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Exec:
				err := msg.Fn()
				if err != nil {
					l.failed++
				} else {
					l.version++
				}
				msg.Reply <- err

			case GetState:
				msg.Reply <- View{RoomID: l.roomID, Version: l.version, Failed: l.failed}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// shutdown fails anything still queued so no caller waits forever.
func (l *Lobby) shutdown() {
	l.cancel()
	for {
		select {
		case m := <-l.inbox:
			if msg, ok := m.(Exec); ok {
				msg.Reply <- ErrClosed
			}
		default:
			return
		}
	}
}

// Do submits fn and waits for it to finish. ctx only bounds the wait for a
// slot in the inbox: once queued, fn always runs to completion (or is failed
// by shutdown) before Do returns, so a released lobby never has work in
// flight. fn should observe ctx itself.
func (l *Lobby) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reply := make(chan error, 1)
	select {
	case l.inbox <- Exec{Fn: fn, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ctx.Done():
		return ErrClosed
	}

	select {
	case err := <-reply:
		return err
	case <-l.stopped:
		// fn may have run just before the loop exited.
		select {
		case err := <-reply:
			return err
		default:
			return ErrClosed
		}
	}
}

func (l *Lobby) Close() { l.cancel() }

// Done is closed once the loop has exited.
func (l *Lobby) Done() <-chan struct{} { return l.stopped }

func (l *Lobby) RoomID() string { return l.roomID }

// Expose the inbox so tests and the hub can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }
