package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patcli/pat/internal/bcd"
	"github.com/patcli/pat/internal/config"
	"github.com/patcli/pat/internal/logging"
	"github.com/patcli/pat/internal/session"
)

var (
	flagConfig      string
	flagVerbose     bool
	flagAll         bool
	flagInteractive bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "pat [keywords...]",
	Short: "Look up browser support for web platform features from MDN's compat data",
	Long: `pat fuzzy-searches MDN's browser-compat-data for the given keywords and
prints a support table for the best match: the version each browser added
the feature in, how long ago that was, and a link to its bug tracker.

The dataset is cached in ~/.pat/pat.db and refreshed with 'pat update'.`,
	Example: "  pat regex unicode sets    # get results for keywords \"regex unicode sets\", e.g. `javascript.builtins.RegExp.unicodeSets`\n" +
		"  pat -i flatmap            # start from the best match, then pick others\n" +
		"  pat                       # browse interactively",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true, // don't print usage on operational errors
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		l, err := logging.New(flagVerbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	RunE: runSearch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: $HOME/.pat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")

	excluded := bcd.JoinEnglish(bcd.NewBrowsers(nil).Names(bcd.DefaultExcludedBrowsers))
	rootCmd.Flags().BoolVarP(&flagAll, "all", "a", false,
		fmt.Sprintf("Include info for all browsers, including %s.", excluded))
	rootCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false,
		"Run in interactive mode. If no keywords are supplied, the program will automatically run in this mode.")
}

// loadConfig reads the effective configuration, honoring --config.
func loadConfig() (*config.Config, string, error) {
	cfg, used, err := config.Load(flagConfig)
	if err != nil {
		return nil, "", fmt.Errorf("cannot load config: %w", err)
	}
	logger.Debug("config loaded", zap.String("file", used), zap.String("data_dir", cfg.DataDir))
	return cfg, used, nil
}

// Execute is called by main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if errors.Is(err, session.ErrInterrupted) {
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
