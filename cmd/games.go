package cmd

import (
	"fmt"
	"io"
	"time"

	"kindlechess/internal/cli"
	"kindlechess/internal/lichess"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	gamesPlain bool
	gamesLimit int
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List your ongoing games",
	Long: `List the games you are currently playing, most urgent first.

Examples:
  kindlechess games
  kindlechess games --plain   # No borders, for scripts`,
	Args: cobra.NoArgs,
	RunE: runGames,
}

func runGames(cmd *cobra.Command, args []string) error {
	client := newClient()
	token, _, err := requireToken(cmd.Context(), cmd, client)
	if err != nil {
		return err
	}

	games, err := client.OngoingGames(cmd.Context(), token, gamesLimit)
	if err != nil {
		return withConnectionHint(err, cfg.API.BaseURL)
	}
	if len(games) == 0 {
		printf(cmd, "No ongoing games.\n")
		return nil
	}
	renderGames(cmd.OutOrStdout(), gamesPlain, games)
	return nil
}

func renderGames(w io.Writer, plain bool, games []lichess.GameInfo) {
	t := cli.NewTable(w, plain, "Game", "Opponent", "Color", "Speed", "Turn", "Time left")
	for _, g := range games {
		t.AppendRow(table.Row{
			g.GameID,
			opponentName(g.Opponent),
			g.Color,
			cli.Dash(g.Speed),
			turnLabel(g.IsMyTurn),
			timeLeft(g.SecondsLeft),
		})
	}
	t.Render()
}

func opponentName(o lichess.Opponent) string {
	switch {
	case o.AI > 0:
		return fmt.Sprintf("Stockfish level %d", o.AI)
	case o.Username == "":
		return "Anonymous"
	case o.Rating > 0:
		return fmt.Sprintf("%s (%d)", o.Username, o.Rating)
	default:
		return o.Username
	}
}

func turnLabel(mine bool) string {
	if mine {
		return "yours"
	}
	return "theirs"
}

func timeLeft(seconds int) string {
	if seconds <= 0 {
		return cli.Dash("")
	}
	return (time.Duration(seconds) * time.Second).String()
}

func init() {
	rootCmd.AddCommand(gamesCmd)
	gamesCmd.Flags().BoolVar(&gamesPlain, "plain", false, "Plain output without borders")
	gamesCmd.Flags().IntVarP(&gamesLimit, "limit", "n", 9, "Maximum number of games")
}
