package cmd

import (
	"errors"
	"fmt"
	"io"

	"kindlechess/internal/lichess"
	"kindlechess/internal/ndjson"
	"kindlechess/pkg/logging"
	pkgstrings "kindlechess/pkg/strings"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow the account event feed",
	Long: `Print games starting and finishing, and challenges, as they happen.

Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := newClient()
	token, _, err := requireToken(ctx, cmd, client)
	if err != nil {
		return err
	}

	events, closer, err := client.StreamEvents(ctx, token)
	if err != nil {
		return withConnectionHint(err, cfg.API.BaseURL)
	}
	defer closer.Close()

	out := cmd.OutOrStdout()
	for ev, err := range events {
		switch {
		case err == nil:
			printAccountEvent(out, ev)
		case errors.Is(err, ndjson.ErrTransientParse):
			logging.Debug("Events", "Skipping account event: %v", err)
		case errors.Is(err, ndjson.ErrConnectionClosed) && ctx.Err() != nil:
			return nil
		default:
			return err
		}
	}
	return nil
}

func printAccountEvent(w io.Writer, ev lichess.AccountEvent) {
	switch e := ev.Value.(type) {
	case *lichess.GameStart:
		fmt.Fprintf(w, "game started   %s vs %s\n", e.Game.GameID, opponentName(e.Game.Opponent))
	case *lichess.GameFinish:
		fmt.Fprintf(w, "game finished  %s (%s)\n", e.Game.GameID, e.Game.Status.Name)
	case *lichess.ChallengeEvent:
		fmt.Fprintf(w, "challenge      %s from %s, %s\n", e.Challenge.ID, e.Challenge.Challenger.Name, challengeTerms(e.Challenge))
	case *lichess.ChallengeCanceled:
		fmt.Fprintf(w, "canceled       %s\n", e.Challenge.ID)
	case *lichess.ChallengeDeclined:
		reason := e.Challenge.DeclineReason
		if reason == "" {
			reason = "declined"
		}
		fmt.Fprintf(w, "declined       %s: %s\n", e.Challenge.ID, pkgstrings.SingleLine(reason, pkgstrings.DefaultLineMaxLen))
	}
}

func challengeTerms(c lichess.Challenge) string {
	terms := c.TimeControl.Show
	if terms == "" {
		terms = c.Speed
	}
	if c.Rated {
		return terms + " rated"
	}
	return terms + " casual"
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
