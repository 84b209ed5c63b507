// Package pathid implements the base36 backup-id codec and the path
// composition rules for the catalog's on-disk layout (spec.md 4.1, 6).
package pathid

import (
	"path/filepath"
	"strconv"
	"strings"
)

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// Base36Encode renders id as a lowercase base36 string, the canonical
// backup directory name.
func Base36Encode(id uint64) string {
	if id == 0 {
		return "0"
	}
	var buf [13]byte // uint64 max needs at most 13 base36 digits
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = digits[id%36]
		id /= 36
	}
	return string(buf[i:])
}

// Base36Decode parses a lowercase (or uppercase) base36 string back
// into its numeric value. Characters outside 0-9a-z are skipped, as
// if absent from the string, so callers see a deterministic (if
// degraded) result rather than a panic.
func Base36Decode(s string) uint64 {
	var v uint64
	for _, r := range strings.ToLower(s) {
		idx := strings.IndexRune(digits, r)
		if idx < 0 {
			continue
		}
		v = v*36 + uint64(idx)
	}
	return v
}

const (
	backupsDirName = "backups"
	walDirName     = "wal"
)

// InstanceBackupsDir returns "<root>/backups/<instance>".
func InstanceBackupsDir(root, instance string) string {
	return filepath.Join(root, backupsDirName, instance)
}

// InstanceWalDir returns "<root>/wal/<instance>".
func InstanceWalDir(root, instance string) string {
	return filepath.Join(root, walDirName, instance)
}

// BackupDir returns "<root>/backups/<instance>/<base36(startTime)>[/subdir1[/subdir2]]".
func BackupDir(root, instance string, startTime uint64, subdirs ...string) string {
	parts := append([]string{InstanceBackupsDir(root, instance), Base36Encode(startTime)}, subdirs...)
	return filepath.Join(parts...)
}

const (
	// ControlFileName is the backup's key=value metadata file.
	ControlFileName = "backup.control"
	// PidFileName is the per-backup exclusive lockfile.
	PidFileName = "backup.pid"
	// DatabaseDirName holds the copied data files.
	DatabaseDirName = "database"
	// FileListName is the NDJSON file-list.
	FileListName = "database_file_list"
	// ExternalDirsName is the parent of externaldir<N> slots.
	ExternalDirsName = "external_directories"
)

// ExternalDirName returns "externaldir<n>" (1-indexed, per spec.md 4.9).
func ExternalDirName(n int) string {
	return "externaldir" + strconv.Itoa(n)
}
