package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kindlechess/internal/cli"
	"kindlechess/internal/console"
	"kindlechess/internal/game"
	"kindlechess/internal/lichess"
	"kindlechess/internal/ndjson"
	"kindlechess/internal/oauth"
	"kindlechess/pkg/logging"

	"github.com/spf13/cobra"
)

const localGameID = "local"

var (
	playOffline bool
	playWait    bool
)

// ErrNoOngoingGame is returned by "play" without a game id when the account
// has nothing to play.
var ErrNoOngoingGame = errors.New("no ongoing game; start one on lichess.org or pass --wait")

var playCmd = &cobra.Command{
	Use:   "play [game-id]",
	Short: "Play one game",
	Long: `Follow one game live and submit your moves.

Moves are typed in UCI notation (e2e4, e7e8q). "resign" resigns, "abort"
aborts a game that has not really started, "quit" (or Ctrl+C) leaves
without resigning.

Without a game id the most urgent ongoing game is played. With --wait and
no ongoing game, kindlechess waits for the next game to start.

--offline plays a hot-seat game in memory; no login is needed.

Examples:
  kindlechess play
  kindlechess play Xy12AbCd
  kindlechess play --wait
  kindlechess play --offline`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if playOffline {
		id := &lichess.Identity{ID: "local", Username: "you"}
		side := lichess.PlayedBy{User: &lichess.Player{ID: id.ID, Name: id.Username}}
		return playSession(ctx, cmd, game.NewLocalBackend(localGameID, side, side), localGameID, id, nil)
	}

	client := newClient()
	store := newTokenStore()
	token, id, err := newAuthenticator(cmd, store, client).GetAuthenticated(ctx)
	if err != nil {
		return withConnectionHint(err, cfg.API.BaseURL)
	}

	var gameID string
	if len(args) == 1 {
		gameID = args[0]
	} else {
		gameID, err = pickGame(ctx, cmd, client, token)
		if err != nil {
			return withConnectionHint(err, cfg.API.BaseURL)
		}
	}

	return playSession(ctx, cmd, game.NewOnlineBackend(client, token), gameID, id, store)
}

// pickGame returns the most urgent ongoing game, or with --wait the next
// game that starts on the account feed.
func pickGame(ctx context.Context, cmd *cobra.Command, client *lichess.Client, token *oauth.TokenInfo) (string, error) {
	games, err := client.OngoingGames(ctx, token, 1)
	if err != nil {
		return "", err
	}
	if len(games) > 0 {
		return games[0].GameID, nil
	}
	if !playWait {
		return "", ErrNoOngoingGame
	}

	events, closer, err := client.StreamEvents(ctx, token)
	if err != nil {
		return "", err
	}
	defer closer.Close()

	progress := cli.StartProgress(cmd.ErrOrStderr(), quiet, "Waiting for a game to start...")
	defer progress.Stop()

	for ev, err := range events {
		if err != nil {
			if errors.Is(err, ndjson.ErrTransientParse) {
				logging.Debug("Play", "Skipping account event: %v", err)
				continue
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", err
		}
		if start, ok := ev.Value.(*lichess.GameStart); ok {
			logging.Info("Play", "Game %s started", start.Game.GameID)
			return start.Game.GameID, nil
		}
	}
	return "", ErrNoOngoingGame
}

// playSession runs the session on the terminal. When store is set the
// session stops as soon as the token file disappears.
func playSession(ctx context.Context, cmd *cobra.Command, backend game.Backend, gameID string, id *lichess.Identity, store *oauth.TokenStore) error {
	source, err := console.NewTerminalMoveSource()
	if err != nil {
		return err
	}
	defer source.Close()

	display := console.NewDisplay(source.Out())
	session := game.NewSession(backend, gameID, id, source, display, gameConfig())

	if store != nil {
		watchCtx, cancelWatch := context.WithCancel(ctx)
		defer cancelWatch()
		gone, err := store.Watch(watchCtx)
		if err != nil {
			logging.Warn("Play", "Cannot watch %s, logout will not stop the game: %v", store.Path(), err)
		} else {
			go func() {
				select {
				case <-gone:
					display.Notice("Logged out, leaving the game")
					session.Cancel()
				case <-watchCtx.Done():
				}
			}()
		}
	}

	logging.Info("Play", "Joining game %s as %s", gameID, id.Username)
	err = session.Run(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return nil
	case errors.Is(err, lichess.ErrUnauthorized):
		return &cli.AuthFailedError{Reason: err}
	default:
		return fmt.Errorf("game %s: %w", gameID, withConnectionHint(err, cfg.API.BaseURL))
	}
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolVar(&playOffline, "offline", false, "Play a hot-seat game without Lichess")
	playCmd.Flags().BoolVar(&playWait, "wait", false, "Wait for a game to start if none is ongoing")
}
