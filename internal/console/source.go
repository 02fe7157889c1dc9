package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"kindlechess/internal/game"
	"kindlechess/pkg/logging"

	"github.com/chzyer/readline"
)

// LineReader reads one line of user input. *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

type inputLine struct {
	text string
	err  error
	at   time.Time
}

// MoveSource asks the player for moves on a terminal.
//
// Input is read by a background goroutine so a prompt can be abandoned when
// the position changes. A line typed before the current prompt was shown is
// dropped rather than applied to the new position. Ctrl+C, Ctrl+D and "quit"
// are honoured at any time, also while no move is being asked for.
type MoveSource struct {
	in  LineReader
	out io.Writer

	start     sync.Once
	lines     chan inputLine
	quit      chan struct{}
	quitOnce  sync.Once
	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

var _ game.Quitter = (*MoveSource)(nil)

// NewMoveSource reads moves from in and writes hints to out.
func NewMoveSource(in LineReader, out io.Writer) *MoveSource {
	return &MoveSource{
		in:    in,
		out:   out,
		lines: make(chan inputLine, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		now:   time.Now,
	}
}

// NewTerminalMoveSource sets up readline on the controlling terminal.
func NewTerminalMoveSource() (*MoveSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("resign"),
			readline.PcItem("abort"),
			readline.PcItem("quit"),
		),
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return NewMoveSource(rl, rl.Stdout()), nil
}

// Out is where the source writes; displays should share it so output does
// not tear the prompt.
func (m *MoveSource) Out() io.Writer {
	return m.out
}

// Quit is closed once the player asks to leave. Reading starts on the
// first call to Quit or NextAction.
func (m *MoveSource) Quit() <-chan struct{} {
	m.start.Do(func() { go m.readLoop() })
	return m.quit
}

// Close releases the terminal.
func (m *MoveSource) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return m.in.Close()
}

// NextAction prompts until the player enters something usable. Ctrl+C,
// Ctrl+D and "quit" return game.ErrQuit.
func (m *MoveSource) NextAction(ctx context.Context, snap game.Snapshot) (game.Action, error) {
	quit := m.Quit()

	m.in.SetPrompt(Prompt(snap))
	shown := m.now()

	for {
		// Leaving wins over any line still queued.
		select {
		case <-quit:
			return game.Action{}, game.ErrQuit
		default:
		}

		select {
		case <-ctx.Done():
			return game.Action{}, ctx.Err()
		case <-quit:
			return game.Action{}, game.ErrQuit
		case l := <-m.lines:
			if l.err != nil {
				return game.Action{}, l.err
			}
			if l.at.Before(shown) {
				logging.Debug("Console", "Dropping input typed before the current prompt: %q", l.text)
				fmt.Fprintln(m.out, "The position changed, please enter your move again.")
				continue
			}

			// Quit lines never get here, readLoop turns them into quit.
			action, _, ok := ParseAction(l.text)
			if !ok {
				continue
			}
			return action, nil
		}
	}
}

// readLoop feeds lines to NextAction and closes quit when the player
// leaves. It stops after the first read error.
func (m *MoveSource) readLoop() {
	for {
		text, err := m.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			m.quitOnce.Do(func() { close(m.quit) })
			return
		}
		if _, quit, _ := ParseAction(text); err == nil && quit {
			m.quitOnce.Do(func() { close(m.quit) })
			return
		}
		if !m.offer(inputLine{text: text, err: err, at: m.now()}) || err != nil {
			return
		}
	}
}

// offer hands l to NextAction without waiting for it. Only the newest
// unread line is kept; anything older belongs to an abandoned prompt.
func (m *MoveSource) offer(l inputLine) bool {
	for {
		select {
		case <-m.done:
			return false
		case m.lines <- l:
			return true
		default:
		}
		select {
		case old := <-m.lines:
			logging.Debug("Console", "Dropping unread input: %q", old.text)
		default:
		}
	}
}

// ParseAction turns one input line into an action. ok is false for blank
// input, which simply prompts again.
func ParseAction(line string) (action game.Action, quit, ok bool) {
	input := strings.ToLower(strings.TrimSpace(line))
	switch input {
	case "":
		return game.Action{}, false, false
	case "quit", "exit":
		return game.Action{}, true, false
	case "resign":
		return game.Resign(), false, true
	case "abort":
		return game.Abort(), false, true
	default:
		return game.Move(input), false, true
	}
}

// Prompt is the readline prompt for snap.
func Prompt(snap game.Snapshot) string {
	mover := "white"
	if snap.MoveCount()%2 == 1 {
		mover = "black"
	}
	return fmt.Sprintf("%d. %s> ", snap.MoveCount()/2+1, mover)
}
