package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patcli/pat/internal/bcd"
	"github.com/patcli/pat/internal/config"
	"github.com/patcli/pat/internal/render"
	"github.com/patcli/pat/internal/search"
	"github.com/patcli/pat/internal/session"
	"github.com/patcli/pat/internal/store"
)

// runSearch implements `pat [keywords...]`.
func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := loadDataset(ctx, cfg, st)
	if err != nil {
		return err
	}
	idx, ds, err := buildIndex(data, cfg.ExcludeKeywords)
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg, ds, os.Stdout)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	if !flagInteractive && query != "" {
		return printBest(os.Stdout, os.Stderr, idx, r, query)
	}

	initial := session.Unset
	if query != "" {
		if best, ok := idx.Best(query); ok {
			initial = best.Index
		} else {
			fmt.Fprintln(os.Stderr, render.NoResults)
		}
	}
	sel := session.NewTeaSelector(idx, os.Stdin, os.Stdout, cfg.MaxRows)
	return session.New(idx, r, sel, os.Stdout, initial, session.WithLogger(logger)).Run(ctx)
}

// printBest renders the top match for query, or reports that nothing
// matched. No match is not an error.
func printBest(stdout, stderr io.Writer, idx *search.Index, r session.Renderer, query string) error {
	best, ok := idx.Best(query)
	if !ok {
		fmt.Fprintln(stderr, render.NoResults)
		return nil
	}
	logger.Debug("best match",
		zap.String("query", query),
		zap.String("key", best.Record.Key()),
		zap.Int("matched", best.Matched),
		zap.Int("score", best.Score))
	out, err := r.Render(best.Record)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

// openStore opens the dataset database with an in-memory layer in front.
func openStore(cfg *config.Config) (*store.Layered, error) {
	db, err := store.OpenSQLite(cfg.StorePath())
	if err != nil {
		return nil, err
	}
	return store.NewLayered(db), nil
}

// loadDataset returns the cached dataset, downloading it first when the
// cache is empty.
func loadDataset(ctx context.Context, cfg *config.Config, st store.Store) ([]byte, error) {
	data, err := st.Get(ctx, store.KeyData)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	printInfo("", "No cached dataset; downloading the latest release")
	if _, err := refreshDataset(ctx, cfg, st, updateFlags{repo: cfg.ReleaseRepo, timeout: cfg.Timeout}); err != nil {
		return nil, fmt.Errorf("cannot download dataset: %w\nRun 'pat update' to retry.", err)
	}
	return st.Get(ctx, store.KeyData)
}

// buildIndex parses the dataset and indexes its records.
func buildIndex(data []byte, excluded []string) (*search.Index, *bcd.Dataset, error) {
	ds, err := bcd.LoadBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("cached dataset is unreadable: %w\nRun 'pat update --force' to download it again.", err)
	}
	records, skipped := search.BuildRecords(ds.Entries(), excluded)
	if skipped > 0 {
		logger.Warn("skipped malformed compat statements", zap.Int("count", skipped))
	}
	logger.Debug("index built",
		zap.String("dataset", ds.Meta.Version),
		zap.Int("records", len(records)))
	return search.Build(records, search.Options{}), ds, nil
}

// newRenderer binds a renderer to out's color profile.
func newRenderer(cfg *config.Config, ds *bcd.Dataset, out io.Writer) (*render.Renderer, error) {
	palette, err := render.NewPalette(cfg.Colors.Recent, cfg.Colors.Old, cfg.Colors.Unsupported, cfg.Colors.Unknown)
	if err != nil {
		return nil, fmt.Errorf("invalid colors in config: %w", err)
	}
	lip := lipgloss.NewRenderer(out)
	return render.NewRenderer(ds.Browsers, palette, render.Options{
		All:        flagAll,
		Exclude:    cfg.ExcludeBrowsers,
		Hyperlinks: render.ColorEnabled(lip),
		Lip:        lip,
	}), nil
}
