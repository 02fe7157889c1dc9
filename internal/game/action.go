package game

import (
	"context"
	"errors"

	"kindlechess/internal/lichess"
)

// ErrQuit is returned by a MoveSource when the player wants to leave the
// session without resigning.
var ErrQuit = errors.New("player quit")

// ActionKind says what the player chose to do on their turn.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionResign
	ActionAbort
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionResign:
		return "resign"
	case ActionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Action is one decision of the local player.
type Action struct {
	Kind ActionKind
	Move string // UCI, only for ActionMove
}

// Move plays a move.
func Move(uci string) Action { return Action{Kind: ActionMove, Move: uci} }

// Resign resigns the game.
func Resign() Action { return Action{Kind: ActionResign} }

// Abort aborts the game.
func Abort() Action { return Action{Kind: ActionAbort} }

// MoveSource asks the local player for their next action. It must return
// promptly once ctx is cancelled: the position may have changed or the game ended.
type MoveSource interface {
	NextAction(ctx context.Context, snap Snapshot) (Action, error)
}

// Quitter is implemented by move sources that can tell when the player
// wants to leave while no move is being asked for. The channel is closed
// once; the session then stops as if Cancel had been called.
type Quitter interface {
	Quit() <-chan struct{}
}

// Display receives what the player should see. Calls come from the session's
// goroutines and must not block for long.
type Display interface {
	Update(snap Snapshot)
	Chat(line *lichess.ChatLine)
	MoveError(err error)
	Notice(msg string)
}
