// Package fio is the file-system abstraction the catalog core consumes
// (spec.md 1, 5): open/read/write/rename/unlink/mkdir/opendir/stat,
// addressed through a host selector. Only the local host is
// implemented here; a remote/agent transport is an external
// collaborator out of scope for this core (spec.md Non-goals).
package fio

import (
	"io"
	"os"
	"sort"
)

// Host selects where fio operations run. FIO_BACKUP_HOST is carried
// through unchanged from the environment (spec.md 5) but only
// HostLocal has a working implementation in this module.
type Host int

const (
	HostLocal Host = iota
	HostRemote
)

// DirEntry is a minimal stat result for one directory entry.
type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
	Mode  os.FileMode
}

// FS is the file-system abstraction every catalog package depends on
// instead of talking to "os" directly, so tests can substitute an
// in-memory fake.
type FS interface {
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
	// CreateExclusive opens path with O_CREAT|O_EXCL|O_RDWR, mode
	// 0600 -- the exclusive-create primitive the lock manager relies
	// on. It must fail with os.ErrExist if the file already exists.
	CreateExclusive(path string) (io.WriteCloser, error)
	Rename(oldPath, newPath string) error
	Remove(path string) error
	Mkdir(path string, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(path string) ([]DirEntry, error)
	Stat(path string) (DirEntry, error)
	Exists(path string) bool
	// DirEmpty reports whether path is an empty directory. A path that
	// does not exist also reports true.
	DirEmpty(path string) (bool, error)
}

// Local is the HostLocal implementation, backed directly by the "os"
// package.
type Local struct{}

// New returns the FS implementation for the given host selector.
func New(host Host) FS {
	switch host {
	case HostRemote:
		// No remote transport is implemented; callers that pass
		// HostRemote get the local implementation, matching this
		// core's stated scope of consuming, not implementing,
		// archive-fetching transports.
		return Local{}
	default:
		return Local{}
	}
}

func (Local) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (Local) Create(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
}

func (Local) CreateExclusive(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
}

func (Local) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (Local) Remove(path string) error {
	return os.Remove(path)
}

func (Local) Mkdir(path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}

func (Local) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (Local) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, DirEntry{
			Name:  e.Name(),
			IsDir: e.IsDir(),
			Size:  info.Size(),
			Mode:  info.Mode(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (Local) Stat(path string) (DirEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DirEntry{}, err
	}
	return DirEntry{Name: info.Name(), IsDir: info.IsDir(), Size: info.Size(), Mode: info.Mode()}, nil
}

func (Local) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (Local) DirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// HostFromEnv reads FIO_BACKUP_HOST the way the original selector is
// passed through (spec.md 5): any non-empty value other than "local"
// selects HostRemote.
func HostFromEnv(getenv func(string) string) Host {
	if getenv == nil {
		getenv = os.Getenv
	}
	v := getenv("FIO_BACKUP_HOST")
	if v == "" || v == "local" {
		return HostLocal
	}
	return HostRemote
}
