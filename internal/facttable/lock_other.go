//go:build !unix

package facttable

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go-worldstats/internal/model"
)

// acquireLock creates the lock file exclusively. A second writer gets ErrLocked.
// Without flock a lock left by a killed run has to be removed by hand.
func acquireLock(root string) (func(), error) {
	path := filepath.Join(root, lockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		holder, _ := os.ReadFile(path)
		return nil, fmt.Errorf("%w: %s (%s)", model.ErrLocked, path, string(holder))
	}
	if err != nil {
		return nil, &model.WriteError{Op: "lock", Path: path, Err: err}
	}
	fmt.Fprintf(f, "pid=%d since=%s", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	f.Close()
	return func() { os.Remove(path) }, nil
}
