package cmd

import (
	"context"

	"kindlechess/internal/cli"
	"kindlechess/internal/lichess"
	"kindlechess/internal/oauth"

	"github.com/spf13/cobra"
)

var resignCmd = &cobra.Command{
	Use:   "resign <game-id>",
	Short: "Resign a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return boardAction(cmd, args[0], "Resigned", (*lichess.Client).Resign)
	},
}

var abortCmd = &cobra.Command{
	Use:   "abort <game-id>",
	Short: "Abort a game",
	Long: `Abort a game. Lichess only allows this before both players have moved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return boardAction(cmd, args[0], "Aborted", (*lichess.Client).Abort)
	},
}

type boardFunc func(c *lichess.Client, ctx context.Context, gameID string, token *oauth.TokenInfo) error

func boardAction(cmd *cobra.Command, gameID, done string, action boardFunc) error {
	client := newClient()
	token, _, err := requireToken(cmd.Context(), cmd, client)
	if err != nil {
		return err
	}
	if err := action(client, cmd.Context(), gameID, token); err != nil {
		return withConnectionHint(err, cfg.API.BaseURL)
	}
	printf(cmd, "%s\n", cli.FormatSuccess(done+" "+gameID))
	return nil
}

func init() {
	rootCmd.AddCommand(resignCmd)
	rootCmd.AddCommand(abortCmd)
}
