package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/patcli/pat/internal/release"
)

var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show pat version, build and dataset information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", emptyAsNA(commit))
	fmt.Printf("Build Date: %s\n", emptyAsNA(buildDate))
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("Dataset:    %s\n", emptyAsNA(cachedDatasetTag(cmd)))
	return nil
}

// cachedDatasetTag returns the stored release tag, or "" when there is
// none or the store cannot be read.
func cachedDatasetTag(cmd *cobra.Command) string {
	cfg, _, err := loadConfig()
	if err != nil {
		return ""
	}
	st, err := openStore(cfg)
	if err != nil {
		return ""
	}
	defer st.Close()
	tag, err := release.NewRefresher(nil, st, logger).CachedTag(cmd.Context())
	if err != nil {
		return ""
	}
	return tag
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
