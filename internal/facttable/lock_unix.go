//go:build unix

package facttable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go-worldstats/internal/model"
)

// acquireLock takes an exclusive flock on the lock file. The kernel releases it
// when the holder exits, so a lock file left by a killed run is simply reused.
// A second live writer gets ErrLocked.
func acquireLock(root string) (func(), error) {
	path := filepath.Join(root, lockFile)
	for attempt := 0; attempt < 3; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			return nil, &model.WriteError{Op: "lock", Path: path, Err: err}
		}
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			holder, _ := os.ReadFile(path)
			f.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return nil, fmt.Errorf("%w: %s (%s)", model.ErrLocked, path, strings.TrimSpace(string(holder)))
			}
			return nil, &model.WriteError{Op: "lock", Path: path, Err: err}
		}
		// the previous holder may have unlinked the file between open and flock
		if !sameFile(f, path) {
			f.Close()
			continue
		}
		f.Truncate(0)
		fmt.Fprintf(f, "pid=%d since=%s", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
		return func() {
			os.Remove(path)
			f.Close()
		}, nil
	}
	return nil, fmt.Errorf("%w: %s (lock file replaced while acquiring)", model.ErrLocked, path)
}

func sameFile(f *os.File, path string) bool {
	held, err := f.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(held, current)
}
