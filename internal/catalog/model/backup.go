package model

import "time"

// Backup is a point-in-time physical copy of a database cluster,
// identified by its start time. BackupID always equals StartTime; there
// is no independent id space (spec.md 3).
type Backup struct {
	StartTime  time.Time
	BackupID   int64
	Mode       BackupMode
	Status     Status
	TLI        uint32
	StartLSN   LSN
	StopLSN    LSN
	RecoveryXID uint64
	RecoveryTime time.Time
	MergeTime  time.Time
	EndTime    time.Time

	BlockSize     uint32
	WalBlockSize  uint32
	ChecksumVersion uint32

	ProgramVersion string
	ServerVersion  string

	Stream      bool
	FromReplica bool

	CompressAlg   CompressAlg
	CompressLevel int

	// -1 means invalid/unset, matching the source's BYTES_INVALID sentinel.
	DataBytes         int64
	WalBytes          int64
	UncompressedBytes int64
	PgdataBytes       int64

	PrimaryConninfo string
	ExternalDirStr  string

	ParentBackup int64 // 0 for FULL backups

	// ParentBackupLink is a non-owning reference resolved by the
	// scanner after loading: it always points at an element of the
	// same scan result, never an independently-owned value.
	ParentBackupLink *Backup
}

// BytesInvalid is the sentinel for an unset/invalid byte count.
const BytesInvalid int64 = -1

// NewBackup returns a Backup populated with the same defaults as the
// original's pgBackupInit.
func NewBackup() *Backup {
	return &Backup{
		Mode:              ModeInvalid,
		Status:            StatusInvalid,
		DataBytes:         BytesInvalid,
		WalBytes:          BytesInvalid,
		UncompressedBytes: 0,
		PgdataBytes:       0,
		CompressAlg:       CompressNotDefined,
	}
}

// StartTimeUnix returns StartTime as a Unix timestamp, the value that
// base36-encodes into the backup's directory name.
func (b *Backup) StartTimeUnix() int64 {
	return b.StartTime.Unix()
}

// BackupFile is one entry of a backup's file-list.
type BackupFile struct {
	Path            string
	Size            int64
	Mode            uint32
	IsDatafile      bool
	IsCFS           bool
	CRC             uint32
	CompressAlg     CompressAlg
	ExternalDirNum  int
	DBOid           uint32
	SegNo           *int64
	Linked          string
	NBlocks         *int
	UncompressedSize int64
}
