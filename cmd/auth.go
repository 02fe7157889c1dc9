package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kindlechess/internal/cli"
	"kindlechess/internal/lichess"
	"kindlechess/internal/oauth"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Lichess login",
	Long: `Manage the Lichess OAuth token used by kindlechess.

Examples:
  kindlechess auth login     # Log in through the browser (or the QR code)
  kindlechess auth status    # Show whether the stored token still works
  kindlechess auth whoami    # Show the account the token belongs to
  kindlechess auth logout    # Forget the stored token`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Lichess",
	Long: `Start the OAuth2 PKCE login.

A local callback server is started and the Lichess authorization page is
opened in a browser. On devices without a browser, scan the QR code or
open the printed URL on another machine on the same network (set
auth.redirectHost to "auto" to advertise this machine's address).

Examples:
  kindlechess auth login
  kindlechess auth login --quiet`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Long: `Remove the stored OAuth token.

A game running in another terminal notices the removal and stops.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Check whether a token is stored and whether Lichess still accepts it.

Exits with code 2 when no token is stored.`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current Lichess account",
	Args:  cobra.NoArgs,
	RunE:  runAuthWhoami,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	client := newClient()
	_, id, err := newAuthenticator(cmd, newTokenStore(), client).Login(cmd.Context())
	if err != nil {
		return withConnectionHint(err, cfg.API.OAuthURL)
	}
	printf(cmd, "%s\n", cli.FormatSuccess("Logged in as "+id.Username))
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	store := newTokenStore()
	if err := newAuthenticator(cmd, store, newClient()).Logout(); err != nil {
		return err
	}
	printf(cmd, "%s\n", cli.FormatSuccess("Removed "+store.Path()))
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	store := newTokenStore()
	token, err := store.Load()
	if err != nil {
		return authStatusError(err, store.Path())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Token file: %s\n", store.Path())
	fmt.Fprintf(out, "Scopes:     %s\n", cli.Dash(strings.Join(token.Scopes(), " ")))
	fmt.Fprintf(out, "Expires:    %s\n", expiry(token))

	_, id, err := requireToken(cmd.Context(), cmd, newClient())
	if err != nil {
		fmt.Fprintf(out, "Status:     %s\n", cli.FormatWarning("not accepted by Lichess"))
		return err
	}
	fmt.Fprintf(out, "Status:     %s\n", cli.FormatSuccess("logged in as "+id.Username))
	return nil
}

func authStatusError(err error, path string) error {
	if errors.Is(err, oauth.ErrTokenNotFound) {
		return &cli.AuthRequiredError{TokenFile: path}
	}
	return err
}

func runAuthWhoami(cmd *cobra.Command, args []string) error {
	_, id, err := requireToken(cmd.Context(), cmd, newClient())
	if err != nil {
		return err
	}
	printIdentity(cmd, id)
	return nil
}

func printIdentity(cmd *cobra.Command, id *lichess.Identity) {
	out := cmd.OutOrStdout()
	name := id.Username
	if id.Title != "" {
		name = id.Title + " " + name
	}
	fmt.Fprintf(out, "Username: %s\n", name)
	fmt.Fprintf(out, "ID:       %s\n", id.ID)
	if id.Profile != nil {
		if full := strings.TrimSpace(id.Profile.FirstName + " " + id.Profile.LastName); full != "" {
			fmt.Fprintf(out, "Name:     %s\n", full)
		}
		if id.Profile.Location != "" {
			fmt.Fprintf(out, "Location: %s\n", id.Profile.Location)
		}
	}
	if id.CreatedAt > 0 {
		fmt.Fprintf(out, "Joined:   %s\n", time.UnixMilli(id.CreatedAt).Format("2006-01-02"))
	}
	if id.PlayTime != nil {
		fmt.Fprintf(out, "Played:   %s\n", time.Duration(id.PlayTime.Total)*time.Second)
	}
	if id.Patron {
		fmt.Fprintln(out, "Patron:   yes")
	}
	if len(id.Perfs) == 0 {
		return
	}

	keys := make([]string, 0, len(id.Perfs))
	for k, p := range id.Perfs {
		if p.Games > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return
	}

	fmt.Fprintln(out)
	t := cli.NewTable(out, quiet, "Perf", "Rating", "Games")
	for _, k := range keys {
		p := id.Perfs[k]
		rating := fmt.Sprintf("%d", p.Rating)
		if p.Prov {
			rating += "?"
		}
		t.AppendRow(table.Row{k, rating, p.Games})
	}
	t.Render()
}

func expiry(token *oauth.TokenInfo) string {
	if token.ExpiresAt == 0 {
		return "never"
	}
	at := time.Unix(token.ExpiresAt, 0)
	if token.Expired(time.Now()) {
		return fmt.Sprintf("%s (expired)", at.Format(time.RFC3339))
	}
	return at.Format(time.RFC3339)
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authWhoamiCmd)
}
