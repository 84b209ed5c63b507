// Package lock implements the per-backup exclusive lockfile with
// stale-owner detection (spec.md 4.4), grounded on lock_backup in
// original_source/src/catalog.c.
package lock

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/errs"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/probe"
)

// maxRetries bounds the stale-reclaim loop so an unwritable directory
// can't spin this forever.
const maxRetries = 100

// Registry is the process-wide list of held lockfiles plus the
// "exit hook registered" flag (spec.md 4.4 step 5, 5 "Shared
// resources"). It is a singleton by necessity: the lockfiles it tracks
// are an OS-level resource shared by the whole process, not by any one
// catalog handle.
type Registry struct {
	mu       sync.Mutex
	held     []string
	fs       fio.FS
	hookOnce sync.Once
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide Registry, creating it on first use.
func Default(fs fio.FS) *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = &Registry{fs: fs}
	})
	return defaultRegistry
}

// Acquire implements lock_backup's state machine against path exactly:
// open-exclusive first; on EEXIST or EACCES fall back to an open-RO
// probe of the current owner, reclaiming a stale lockfile and
// retrying up to maxRetries times. A false, nil return means the lock
// is held by a live process -- not an error. Any other failure is
// fatal.
func (r *Registry) Acquire(path string, live probe.Liveness) (bool, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		w, err := r.fs.CreateExclusive(path)
		if err == nil {
			if werr := writePID(w); werr != nil {
				_ = r.fs.Remove(path)
				return false, errs.Fatal("lock.Acquire: write pid", werr)
			}
			r.registerHeld(path)
			return true, nil
		}
		if !os.IsExist(err) && !os.IsPermission(err) {
			return false, errs.Fatal("lock.Acquire: create lockfile", err)
		}

		pid, rerr := readOwnerPID(r.fs, path)
		if rerr == errLockGone {
			continue // raced with deletion, retry the exclusive create
		}
		if rerr != nil {
			return false, errs.Fatal("lock.Acquire: "+rerr.Error(), rerr)
		}
		if pid <= 0 {
			return false, errs.Fatal("lock.Acquire: invalid pid in lockfile", fmt.Errorf("pid=%d", pid))
		}

		if live.SelfOrAncestor(pid) {
			if uerr := r.fs.Remove(path); uerr != nil {
				return false, errs.Fatal("lock.Acquire: unlink self-owned stale lock", uerr)
			}
			continue
		}

		alive, denied, aerr := live.Alive(pid)
		if aerr != nil {
			return false, errs.Fatal("lock.Acquire: probe owner", aerr)
		}
		if alive {
			return false, nil
		}
		if denied {
			return false, nil
		}
		// ESRCH: stale, reclaim and retry.
		if uerr := r.fs.Remove(path); uerr != nil {
			return false, errs.Fatal("lock.Acquire: unlink stale lock", uerr)
		}
	}
	return false, errs.Fatal("lock.Acquire: exceeded retry budget reclaiming "+path, fmt.Errorf("max retries (%d) exceeded", maxRetries))
}

var errLockGone = fmt.Errorf("lockfile removed concurrently")

func readOwnerPID(fs fio.FS, path string) (int, error) {
	r, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errLockGone
		}
		return 0, err
	}
	defer r.Close()

	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	text := strings.TrimSpace(string(buf[:n]))
	if text == "" {
		return 0, fmt.Errorf("empty lockfile")
	}
	pid, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("unparseable pid %q", text)
	}
	return pid, nil
}

func writePID(w interface {
	Write([]byte) (int, error)
	Close() error
}) error {
	line := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if _, err := w.Write(line); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (r *Registry) registerHeld(path string) {
	r.mu.Lock()
	r.held = append(r.held, path)
	r.mu.Unlock()
}

// ReleaseAll unlinks every lockfile this process has acquired. It is
// registered once (idempotent) as a process-exit hook by RegisterExitHook;
// tests and long-lived daemons may also call it directly.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.held {
		_ = r.fs.Remove(p)
	}
	r.held = nil
}

// RegisterExitHook wires ReleaseAll to os.Exit-driven cleanup via hook,
// a caller-supplied function (typically wrapping signal handling and
// deferred cleanup in main, since Go has no atexit equivalent for
// os.Exit paths). Idempotent: subsequent calls are no-ops.
func (r *Registry) RegisterExitHook(hook func(func())) {
	r.hookOnce.Do(func() {
		if hook != nil {
			hook(r.ReleaseAll)
		}
	})
}
