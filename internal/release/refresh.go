package release

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patcli/pat/internal/bcd"
	"github.com/patcli/pat/internal/store"
)

// Source is where releases come from. *Client implements it.
type Source interface {
	Latest(ctx context.Context, repo string) (*Release, error)
	Download(ctx context.Context, url string, progress ProgressFunc) ([]byte, error)
}

// Options control a single refresh.
type Options struct {
	Repo  string
	Asset string
	// LockPath enables the inter-process lock when set.
	LockPath    string
	LockTimeout time.Duration
	// Force downloads even when the cached tag is current.
	Force bool
	// CheckOnly compares tags without downloading.
	CheckOnly bool
	Progress  ProgressFunc
}

// Outcome reports what a refresh did.
type Outcome struct {
	Previous  string
	Latest    string
	Available bool
	Updated   bool
	Bytes     int
}

// Refresher keeps the stored dataset in step with the latest release.
type Refresher struct {
	src    Source
	store  store.Store
	logger *zap.Logger
}

// NewRefresher returns a Refresher. A nil logger discards logs.
func NewRefresher(src Source, st store.Store, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{src: src, store: st, logger: logger}
}

// CachedTag returns the tag of the stored dataset, or "" if none is stored.
func (r *Refresher) CachedTag(ctx context.Context) (string, error) {
	tag, err := store.GetString(ctx, r.store, store.KeyTag)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return tag, err
}

// Refresh downloads the latest dataset unless the stored copy already has
// the latest tag. The dataset is written before the tag so an interrupted
// refresh is retried next time.
func (r *Refresher) Refresh(ctx context.Context, opts Options) (Outcome, error) {
	if opts.Repo == "" {
		opts.Repo = DefaultRepo
	}
	if opts.Asset == "" {
		opts.Asset = DefaultAsset
	}

	if opts.LockPath != "" {
		unlock, err := AcquireLock(ctx, opts.LockPath, opts.LockTimeout)
		if err != nil {
			return Outcome{}, err
		}
		defer unlock()
	}

	rel, err := r.src.Latest(ctx, opts.Repo)
	if err != nil {
		return Outcome{}, err
	}
	latest := strings.TrimSpace(rel.TagName)
	if latest == "" {
		return Outcome{}, fmt.Errorf("invalid release: empty tag_name")
	}

	previous, err := r.CachedTag(ctx)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Previous: previous, Latest: latest, Available: previous != latest}
	r.logger.Debug("compared release tags",
		zap.String("repo", opts.Repo),
		zap.String("cached", previous),
		zap.String("latest", latest))

	if !out.Available && !opts.Force {
		return out, nil
	}
	if opts.CheckOnly {
		return out, nil
	}

	asset, err := SelectAsset(rel, opts.Asset)
	if err != nil {
		return out, err
	}
	data, err := r.src.Download(ctx, asset.BrowserDownloadURL, opts.Progress)
	if err != nil {
		return out, err
	}
	if err := bcd.Validate(data); err != nil {
		return out, fmt.Errorf("downloaded %s is not a dataset: %w", asset.Name, err)
	}

	if err := r.store.Set(ctx, store.KeyData, data); err != nil {
		return out, err
	}
	if err := r.store.Set(ctx, store.KeyTag, []byte(latest)); err != nil {
		return out, err
	}
	r.logger.Info("dataset refreshed",
		zap.String("tag", latest),
		zap.Int("bytes", len(data)))

	out.Updated = true
	out.Bytes = len(data)
	return out, nil
}
