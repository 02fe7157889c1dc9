package cmd

import (
	"fmt"
	"strings"

	"kindlechess/internal/cli"

	"github.com/spf13/cobra"
)

var puzzleSolution bool

var puzzleCmd = &cobra.Command{
	Use:   "puzzle",
	Short: "Show the daily puzzle",
	Long: `Show today's Lichess puzzle. No login is needed.

Examples:
  kindlechess puzzle
  kindlechess puzzle --solution`,
	Args: cobra.NoArgs,
	RunE: runPuzzle,
}

func runPuzzle(cmd *cobra.Command, args []string) error {
	progress := cli.StartProgress(cmd.ErrOrStderr(), quiet, "Fetching the daily puzzle...")
	p, err := newClient().DailyPuzzle(cmd.Context())
	if err != nil {
		progress.Fail("Could not fetch the daily puzzle")
		return withConnectionHint(err, cfg.API.BaseURL)
	}
	progress.Stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Puzzle:  %s (rated %d, played %d times)\n", p.Puzzle.ID, p.Puzzle.Rating, p.Puzzle.Plays)
	fmt.Fprintf(out, "URL:     https://lichess.org/training/%s\n", p.Puzzle.ID)
	fmt.Fprintf(out, "Themes:  %s\n", cli.Dash(strings.Join(p.Puzzle.Themes, ", ")))

	players := make([]string, 0, len(p.Game.Players))
	for _, pl := range p.Game.Players {
		players = append(players, fmt.Sprintf("%s (%s, %d)", pl.Name, pl.Color, pl.Rating))
	}
	fmt.Fprintf(out, "From:    %s game %s: %s\n", cli.Dash(p.Game.Perf.Name), p.Game.ID, cli.Dash(strings.Join(players, " vs ")))
	if puzzleSolution {
		fmt.Fprintf(out, "Solution: %s\n", strings.Join(p.Puzzle.Solution, " "))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(puzzleCmd)
	puzzleCmd.Flags().BoolVar(&puzzleSolution, "solution", false, "Also print the solution")
}
