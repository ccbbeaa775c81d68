package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockPath determines the per-user lock path used to prevent concurrent
// refreshes.
func LockPath() (string, error) {
	if cacheDir, err := os.UserCacheDir(); err == nil && cacheDir != "" {
		dir := filepath.Join(cacheDir, "pat")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, "refresh.lock"), nil
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dir := filepath.Join(home, ".pat")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, "refresh.lock"), nil
		}
	}
	return "", fmt.Errorf("cannot determine writable lock directory")
}

// AcquireLock takes the file lock at path, retrying until timeout elapses
// or ctx is done. The returned func releases it.
func AcquireLock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire refresh lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another refresh is in progress (lock: %s)", path)
		}
		select {
		case <-ctx.Done():
			return func() {}, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}
