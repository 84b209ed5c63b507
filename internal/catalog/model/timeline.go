package model

// SegInterval is a closed interval [Begin, End] of segment numbers,
// used both for lost_segments (gaps) and keep_segments (protected
// ranges).
type SegInterval struct {
	Begin SegNo
	End   SegNo
}

// Contains reports whether segno falls within the interval, inclusive.
func (iv SegInterval) Contains(segno SegNo) bool {
	return segno >= iv.Begin && segno <= iv.End
}

// XlogFile is one WAL-archive file observed during a timeline scan.
type XlogFile struct {
	Path  string
	Name  string
	Size  int64
	SegNo SegNo
	Type  XlogFileType
	Keep  bool
}

// Timeline is a line of WAL history, linked to its parent by a
// switchpoint LSN.
type Timeline struct {
	TLI         uint32
	Switchpoint LSN
	ParentTLI   uint32

	// ParentLink is a non-owning reference into the same scanner
	// result slice as this Timeline.
	ParentLink *Timeline

	BeginSegNo SegNo
	EndSegNo   SegNo
	NXlogFiles int
	Size       int64

	XlogFilelist []*XlogFile
	LostSegments []SegInterval

	// Backups attached to this timeline by the timeline scanner.
	// Ownership of the Backup values themselves remains with the
	// catalog scanner's result slice; this is a non-owning view.
	Backups []*Backup

	OldestBackup  *Backup
	ClosestBackup *Backup

	AnchorLSN LSN
	AnchorTLI uint32

	KeepSegments []SegInterval
}

// IsOwnAnchor reports whether this timeline's anchor_lsn was found on
// this timeline itself (as opposed to inherited from a closest_backup
// elsewhere, which protects the whole timeline per spec.md 4.8).
func (t *Timeline) IsOwnAnchor() bool {
	return t.AnchorLSN.Valid() && t.AnchorTLI == t.TLI
}
