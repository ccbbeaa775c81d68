package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/patcli/pat/internal/config"
	"github.com/patcli/pat/internal/release"
	"github.com/patcli/pat/internal/store"
)

// updateFlags holds flag values for the `pat update` command.
type updateFlags struct {
	check   bool
	force   bool
	repo    string
	timeout time.Duration
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download the latest browser-compat-data release",
	Long: `Compare the cached dataset's release tag with the latest GitHub release and
download the new data.json when they differ.

A GitHub token in PAT_GITHUB_TOKEN or GITHUB_TOKEN (environment or
~/.pat/.env) is sent with API requests when present.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	var f updateFlags
	updateCmd.Flags().BoolVar(&f.check, "check", false, "Check for a new dataset but do not download it")
	updateCmd.Flags().BoolVar(&f.force, "force", false, "Download even if the cached dataset is current")
	updateCmd.Flags().StringVar(&f.repo, "repo", release.DefaultRepo, "GitHub repo in owner/name format")
	updateCmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Minute, "Overall timeout for network operations")
	updateCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(context.WithValue(cmd.Context(), updateFlagsKey{}, f))
		return nil
	}
	rootCmd.AddCommand(updateCmd)
}

type updateFlagsKey struct{}

// runUpdate implements the `pat update` command.
func runUpdate(cmd *cobra.Command, _ []string) error {
	f, ok := cmd.Context().Value(updateFlagsKey{}).(updateFlags)
	if !ok {
		return fmt.Errorf("internal error: update flags missing")
	}
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	// config file values apply unless the flag was given
	if !cmd.Flags().Changed("repo") {
		f.repo = cfg.ReleaseRepo
	}
	if !cmd.Flags().Changed("timeout") {
		f.timeout = cfg.Timeout
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := refreshDataset(cmd.Context(), cfg, st, f)
	if err != nil {
		return err
	}

	msg, updated := describeOutcome(out)
	if !updated && out.Available {
		printInfo("", msg)
		return nil
	}
	printOK("", msg)
	return nil
}

// describeOutcome returns the status line for a refresh and whether the
// dataset was replaced.
func describeOutcome(out release.Outcome) (string, bool) {
	previous := out.Previous
	if previous == "" {
		previous = "none"
	}
	switch {
	case out.Updated:
		return fmt.Sprintf("Updated dataset: %s -> %s (%s)", previous, out.Latest, release.HumanBytes(int64(out.Bytes))), true
	case out.Available:
		return fmt.Sprintf("Update available: %s -> %s", previous, out.Latest), false
	default:
		return fmt.Sprintf("Dataset is up to date: %s", out.Latest), false
	}
}

// newReleaseSource builds the release feed client. Tests point it at a
// local server.
var newReleaseSource = func(token string) release.Source {
	return release.NewClient(token)
}

// refreshDataset runs one locked refresh against the release feed.
func refreshDataset(ctx context.Context, cfg *config.Config, st store.Store, f updateFlags) (release.Outcome, error) {
	token, err := config.GitHubToken()
	if err != nil {
		printWarn("", fmt.Sprintf("cannot read GitHub token, continuing unauthenticated: %v", err))
		token = ""
	}
	lockPath, err := release.LockPath()
	if err != nil {
		return release.Outcome{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	progress := &downloadProgress{w: os.Stderr}
	r := release.NewRefresher(newReleaseSource(token), st, logger)
	out, err := r.Refresh(ctx, release.Options{
		Repo:        f.repo,
		Asset:       cfg.ReleaseAsset,
		LockPath:    lockPath,
		LockTimeout: f.timeout,
		Force:       f.force,
		CheckOnly:   f.check,
		Progress:    progress.print,
	})
	progress.done()
	return out, err
}

// downloadProgress renders a single-line progress indicator to w.
type downloadProgress struct {
	w       io.Writer
	printed bool
}

func (p *downloadProgress) print(downloaded, total int64) {
	p.printed = true
	if total > 0 {
		pct := float64(downloaded) / float64(total) * 100
		fmt.Fprintf(p.w, "\rDownloading... %s / %s (%.1f%%)", release.HumanBytes(downloaded), release.HumanBytes(total), pct)
		return
	}
	fmt.Fprintf(p.w, "\rDownloading... %s", release.HumanBytes(downloaded))
}

func (p *downloadProgress) done() {
	if p.printed {
		fmt.Fprintln(p.w)
	}
}
