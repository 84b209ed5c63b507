package model

import "strings"

// BackupMode classifies a backup as a base copy or one of three
// incremental flavours.
type BackupMode int

const (
	ModeInvalid BackupMode = iota
	ModeFull
	ModePage
	ModePtrack
	ModeDelta
)

func (m BackupMode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModePage:
		return "page"
	case ModePtrack:
		return "ptrack"
	case ModeDelta:
		return "delta"
	default:
		return "invalid"
	}
}

// ParseBackupMode parses the textual backup-mode token used in
// backup.control. Unknown tokens return ModeInvalid and an error.
func ParseBackupMode(s string) (BackupMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "full":
		return ModeFull, nil
	case "page":
		return ModePage, nil
	case "ptrack":
		return ModePtrack, nil
	case "delta":
		return ModeDelta, nil
	default:
		return ModeInvalid, &invalidEnumError{kind: "backup-mode", value: s}
	}
}

// Incremental reports whether m is any non-FULL mode.
func (m BackupMode) Incremental() bool {
	return m != ModeFull && m != ModeInvalid
}

// Status is the lifecycle state of a backup.
type Status int

const (
	StatusInvalid Status = iota
	StatusOK
	StatusError
	StatusRunning
	StatusMerging
	StatusDeleting
	StatusDeleted
	StatusDone
	StatusOrphan
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusRunning:
		return "RUNNING"
	case StatusMerging:
		return "MERGING"
	case StatusDeleting:
		return "DELETING"
	case StatusDeleted:
		return "DELETED"
	case StatusDone:
		return "DONE"
	case StatusOrphan:
		return "ORPHAN"
	case StatusCorrupt:
		return "CORRUPT"
	default:
		return "INVALID"
	}
}

// ParseStatus parses a textual status token. Unrecognised tokens are
// tolerated (per spec.md 4.2: unknown keys/values are warnings, not
// failures) and resolve to StatusInvalid.
func ParseStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OK":
		return StatusOK
	case "ERROR":
		return StatusError
	case "RUNNING":
		return StatusRunning
	case "MERGING":
		return StatusMerging
	case "DELETING":
		return StatusDeleting
	case "DELETED":
		return StatusDeleted
	case "DONE":
		return StatusDone
	case "ORPHAN":
		return StatusOrphan
	case "CORRUPT":
		return StatusCorrupt
	default:
		return StatusInvalid
	}
}

// Valid reports whether the backup is usable as a PITR ancestor.
func (s Status) Valid() bool {
	return s == StatusOK || s == StatusDone
}

// CompressAlg is the WAL/file compression codec used by a backup.
type CompressAlg int

const (
	CompressNotDefined CompressAlg = iota
	CompressNone
	CompressPGLZ
	CompressZLIB
)

func (a CompressAlg) String() string {
	switch a {
	case CompressNone, CompressNotDefined:
		// Lossy on purpose: the original source collapses both to
		// "none" on deparse (spec.md 9, open question). Preserved
		// here rather than "fixed" since nothing downstream needs
		// the NOT_DEFINED/NONE distinction restored.
		return "none"
	case CompressPGLZ:
		return "pglz"
	case CompressZLIB:
		return "zlib"
	default:
		return "none"
	}
}

// ParseCompressAlg parses the textual compress-alg token.
func ParseCompressAlg(s string) (CompressAlg, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "none":
		return CompressNone, nil
	case "pglz":
		return CompressPGLZ, nil
	case "zlib":
		return CompressZLIB, nil
	default:
		return CompressNotDefined, &invalidEnumError{kind: "compress-alg", value: s}
	}
}

type invalidEnumError struct {
	kind  string
	value string
}

func (e *invalidEnumError) Error() string {
	return "invalid " + e.kind + " value: " + e.value
}

// XlogFileType classifies an entry found while scanning the archive.
type XlogFileType int

const (
	XlogSegment XlogFileType = iota
	XlogPartialSegment
	XlogBackupHistoryFile
)
