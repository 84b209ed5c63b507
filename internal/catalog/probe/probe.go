// Package probe answers the two questions the lock manager needs about
// a PID found in a stale lockfile: is it still alive, and could it be
// this process's own lineage (spec.md 4.4, 9 "Stale-PID heuristic").
package probe

import (
	"os"

	"golang.org/x/sys/unix"
)

// Liveness is "is-alive" / "is-self-or-ancestor" probing, kept behind
// an interface so hosts without a real process hierarchy (the design
// note's "degrades to self-only" case) can supply their own.
type Liveness interface {
	// Alive sends signal 0 to pid and reports whether the process
	// still exists. The second return value is true if permission was
	// denied (EPERM): per spec.md 4.4 that counts as "owned" by a
	// live process we simply can't signal.
	Alive(pid int) (alive bool, permissionDenied bool, err error)
	// SelfOrAncestor reports whether pid names this process, its
	// parent, or (via PG_GRANDPARENT_PID) its grandparent.
	SelfOrAncestor(pid int) bool
}

// OS is the real, POSIX-backed Liveness implementation.
type OS struct{}

func (OS) Alive(pid int) (bool, bool, error) {
	err := unix.Kill(pid, 0)
	if err == nil {
		return true, false, nil
	}
	if err == unix.ESRCH {
		return false, false, nil
	}
	if err == unix.EPERM {
		return false, true, nil
	}
	return false, false, err
}

func (OS) SelfOrAncestor(pid int) bool {
	if pid == os.Getpid() || pid == os.Getppid() {
		return true
	}
	if gp, ok := grandparentPID(); ok && pid == gp {
		return true
	}
	return false
}

// grandparentPID reads PG_GRANDPARENT_PID (spec.md 6): the only
// additional "self-family" PID consumed from the environment. On a
// host lacking a real process hierarchy, callers that never set this
// variable naturally degrade to the self/parent-only check.
func grandparentPID() (int, bool) {
	v, ok := os.LookupEnv("PG_GRANDPARENT_PID")
	if !ok || v == "" {
		return 0, false
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
