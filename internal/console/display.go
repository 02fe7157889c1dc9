package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"kindlechess/internal/game"
	"kindlechess/internal/lichess"
	pkgstrings "kindlechess/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Display prints game progress as plain lines, suitable for a slow
// e-ink terminal: nothing is redrawn, only changes are printed.
type Display struct {
	mu      sync.Mutex
	out     io.Writer
	started bool
	last    game.Snapshot
}

// NewDisplay writes to out.
func NewDisplay(out io.Writer) *Display {
	return &Display{out: out}
}

func (d *Display) Update(snap game.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		d.started = true
		fmt.Fprintf(d.out, "%s vs %s (you play %s)\n",
			snap.White.DisplayName(), snap.Black.DisplayName(), snap.Side)
	} else if snap.Moves == d.last.Moves && snap.Status == d.last.Status && snap.State == d.last.State {
		return
	}
	d.last = snap

	if moves := strings.Fields(snap.Moves); len(moves) > 0 {
		fmt.Fprintf(d.out, "Move %d: %s\n", len(moves), moves[len(moves)-1])
	}
	fmt.Fprintln(d.out, TurnIndicator(snap))
}

func (d *Display) Chat(line *lichess.ChatLine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "%s %s: %s\n", text.FgHiBlack.Sprintf("[%s]", line.Room), line.Username,
		pkgstrings.SingleLine(line.Text, pkgstrings.DefaultLineMaxLen))
}

func (d *Display) MoveError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, text.FgRed.Sprintf("✗ %v", err))
}

func (d *Display) Notice(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, text.FgYellow.Sprint(msg))
}

// TurnIndicator is a one line, coloured summary of whose move it is.
func TurnIndicator(snap game.Snapshot) string {
	switch {
	case snap.State == game.StateTerminal:
		return text.FgHiMagenta.Sprintf("Game over: %s", Outcome(snap))
	case snap.Side == game.SideNone:
		return text.FgHiBlack.Sprint("Watching")
	case snap.LocalTurn:
		return text.FgGreen.Sprint("Your move")
	default:
		return text.FgHiBlack.Sprint("Waiting for opponent")
	}
}

// Outcome describes how a finished game ended.
func Outcome(snap game.Snapshot) string {
	if lichess.IsOngoingStatus(snap.Status) || snap.Status == "" {
		return "opponent left"
	}
	return snap.Status
}
