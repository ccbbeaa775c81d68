package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patcli/pat/internal/config"
	"github.com/patcli/pat/internal/release"
	"github.com/patcli/pat/internal/store"
)

func TestUpdateFlagsDefaults(t *testing.T) {
	repo := updateCmd.Flags().Lookup("repo")
	if repo == nil || repo.DefValue != "mdn/browser-compat-data" {
		t.Fatalf("unexpected --repo default: %+v", repo)
	}
	timeout, err := updateCmd.Flags().GetDuration("timeout")
	if err != nil {
		t.Fatalf("timeout flag: %v", err)
	}
	if timeout != 5*time.Minute {
		t.Fatalf("unexpected --timeout default: %s", timeout)
	}
}

func TestDownloadProgress(t *testing.T) {
	var buf bytes.Buffer
	p := &downloadProgress{w: &buf}
	p.done()
	if buf.Len() != 0 {
		t.Fatalf("done without progress must print nothing, got %q", buf.String())
	}

	p.print(512, 2048)
	p.print(2048, 2048)
	p.done()
	want := "\rDownloading... 512 B / 2.0 KiB (25.0%)" +
		"\rDownloading... 2.0 KiB / 2.0 KiB (100.0%)\n"
	if got := buf.String(); got != want {
		t.Fatalf("progress output:\n got %q\nwant %q", got, want)
	}

	buf.Reset()
	p = &downloadProgress{w: &buf}
	p.print(10, 0)
	p.done()
	if got := buf.String(); got != "\rDownloading... 10 B\n" {
		t.Fatalf("unknown-size progress = %q", got)
	}
}

func TestDescribeOutcome(t *testing.T) {
	cases := []struct {
		out     release.Outcome
		want    string
		updated bool
	}{
		{release.Outcome{Latest: "v6.0.1", Available: true, Updated: true, Bytes: 2048}, "Updated dataset: none -> v6.0.1 (2.0 KiB)", true},
		{release.Outcome{Previous: "v6.0.0", Latest: "v6.0.1", Available: true}, "Update available: v6.0.0 -> v6.0.1", false},
		{release.Outcome{Previous: "v6.0.1", Latest: "v6.0.1"}, "Dataset is up to date: v6.0.1", false},
	}
	for _, c := range cases {
		got, updated := describeOutcome(c.out)
		if got != c.want || updated != c.updated {
			t.Fatalf("describeOutcome(%+v) = %q, %v want %q, %v", c.out, got, updated, c.want, c.updated)
		}
	}
}

// serveReleases starts a release feed serving body as data.json under tag
// and points newReleaseSource at it. The returned counter tracks downloads.
func serveReleases(t *testing.T, tag string, body []byte) *atomic.Int32 {
	t.Helper()
	var downloads atomic.Int32
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/mdn/browser-compat-data/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name":%q,"assets":[{"name":"data.json","browser_download_url":"%s/download/data.json","size":%d}]}`,
			tag, srv.URL, len(body))
	})
	mux.HandleFunc("/download/data.json", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		_, _ = w.Write(body)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	prev := newReleaseSource
	newReleaseSource = func(token string) release.Source {
		c := release.NewClient(token)
		c.BaseURL = srv.URL
		return c
	}
	t.Cleanup(func() { newReleaseSource = prev })
	return &downloads
}

// isolateHome keeps lock files and dotenv lookups inside a temp dir.
func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", home+"/.cache")
	t.Setenv("PAT_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
}

func TestLoadDataset_RefreshesEmptyCache(t *testing.T) {
	isolateHome(t)
	data := fixtureData(t)
	downloads := serveReleases(t, "v6.0.0", data)

	ctx := context.Background()
	st := store.NewMemory()
	cfg := config.Default()

	got, err := loadDataset(ctx, cfg, st)
	if err != nil {
		t.Fatalf("loadDataset: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("loadDataset returned %d bytes, want the downloaded %d", len(got), len(data))
	}
	if n := downloads.Load(); n != 1 {
		t.Fatalf("downloads = %d, want 1", n)
	}
	tag, err := store.GetString(ctx, st, store.KeyTag)
	if err != nil || tag != "v6.0.0" {
		t.Fatalf("stored tag = %q, %v", tag, err)
	}

	// a filled cache is served without touching the feed
	if _, err := loadDataset(ctx, cfg, st); err != nil {
		t.Fatalf("second loadDataset: %v", err)
	}
	if n := downloads.Load(); n != 1 {
		t.Fatalf("downloads after cached load = %d, want 1", n)
	}
}

func TestLoadDataset_RefreshFailure(t *testing.T) {
	isolateHome(t)
	serveReleases(t, "v6.0.0", []byte("not json"))

	_, err := loadDataset(context.Background(), config.Default(), store.NewMemory())
	if err == nil {
		t.Fatalf("expected error when the downloaded dataset is invalid")
	}
}

func TestRefreshDataset_Reporting(t *testing.T) {
	isolateHome(t)
	data := fixtureData(t)
	downloads := serveReleases(t, "v6.0.1", data)

	ctx := context.Background()
	st := store.NewMemory()
	if err := st.Set(ctx, store.KeyTag, []byte("v6.0.1")); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	f := updateFlags{repo: cfg.ReleaseRepo, timeout: time.Minute}

	out, err := refreshDataset(ctx, cfg, st, f)
	if err != nil {
		t.Fatalf("refreshDataset: %v", err)
	}
	if msg, _ := describeOutcome(out); msg != "Dataset is up to date: v6.0.1" {
		t.Fatalf("up to date message = %q", msg)
	}

	if err := st.Set(ctx, store.KeyTag, []byte("v6.0.0")); err != nil {
		t.Fatal(err)
	}
	f.check = true
	out, err = refreshDataset(ctx, cfg, st, f)
	if err != nil {
		t.Fatalf("refreshDataset --check: %v", err)
	}
	if msg, updated := describeOutcome(out); updated || msg != "Update available: v6.0.0 -> v6.0.1" {
		t.Fatalf("check message = %q (updated=%v)", msg, updated)
	}
	if n := downloads.Load(); n != 0 {
		t.Fatalf("downloads = %d before a real update, want 0", n)
	}

	f.check = false
	out, err = refreshDataset(ctx, cfg, st, f)
	if err != nil {
		t.Fatalf("refreshDataset update: %v", err)
	}
	if _, updated := describeOutcome(out); !updated || downloads.Load() != 1 {
		t.Fatalf("expected one download and an update, got %+v", out)
	}
}
