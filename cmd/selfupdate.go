package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepo is the GitHub owner/name that release builds are published
// under. It is stamped in at build time; "self-update --repo" overrides it.
var releaseRepo string

// SetReleaseRepo sets the default repository for self-update.
func SetReleaseRepo(slug string) {
	releaseRepo = slug
}

var errNoReleaseRepo = errors.New("no release repository known for this build, pass --repo owner/name")

func newSelfUpdateCmd() *cobra.Command {
	var repo string
	c := &cobra.Command{
		Use:   "self-update",
		Short: "Update kindlechess to the latest release",
		Long: `Looks up the newest GitHub release of kindlechess and replaces the
running binary with it when it is newer than this one.

Release builds know where they were published. For other builds pass
--repo with the owner/name of the repository to update from.`,
		PersistentPreRun: skipSetup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd, repo)
		},
	}
	c.Flags().StringVar(&repo, "repo", "", "GitHub repository (owner/name) to update from")
	return c
}

// updateSlug picks the repository to check: the flag, else the build default.
func updateSlug(flag string) (string, error) {
	slug := strings.TrimSpace(flag)
	if slug == "" {
		slug = releaseRepo
	}
	if slug == "" {
		return "", errNoReleaseRepo
	}
	owner, name, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid repository %q, want owner/name", slug)
	}
	return slug, nil
}

func runSelfUpdate(cmd *cobra.Command, repo string) error {
	current := GetVersion()
	if current == "" || current == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}
	slug, err := updateSlug(repo)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "kindlechess %s, looking for releases in %s\n", current, slug)

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}
	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(slug))
	if err != nil {
		return fmt.Errorf("failed to look up releases of %s: %w", slug, err)
	}
	if !found {
		return fmt.Errorf("no release of %s matches this platform", slug)
	}
	if !latest.GreaterThan(current) {
		fmt.Fprintln(out, "Already up to date.")
		return nil
	}

	printRelease(out, latest)

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(out, "Updated %s to %s\n", exe, latest.Version())
	return nil
}

func printRelease(out io.Writer, r *selfupdate.Release) {
	fmt.Fprintf(out, "Release %s (%s)\n", r.Version(), r.PublishedAt.Format("2006-01-02"))
	if notes := strings.TrimSpace(r.ReleaseNotes); notes != "" {
		fmt.Fprintln(out, notes)
	}
}
