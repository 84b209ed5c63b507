package model

import (
	"fmt"
	"strconv"
	"strings"
)

// LSN is a 64-bit pointer into the WAL stream, printed as two hex halves
// joined by '/' (e.g. "0/16B2028").
type LSN uint64

// InvalidLSN is the zero value; it never occurs as a real WAL position.
const InvalidLSN LSN = 0

// Valid reports whether lsn is a real WAL position.
func (lsn LSN) Valid() bool {
	return lsn != InvalidLSN
}

// String renders the LSN in the canonical "%X/%X" form.
func (lsn LSN) String() string {
	return fmt.Sprintf("%X/%X", uint32(lsn>>32), uint32(lsn))
}

// ParseLSN parses the "%X/%X" form back into an LSN.
func ParseLSN(s string) (LSN, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return InvalidLSN, fmt.Errorf("invalid LSN %q: expected hi/lo", s)
	}
	hi, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return InvalidLSN, fmt.Errorf("invalid LSN %q: %w", s, err)
	}
	lo, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return InvalidLSN, fmt.Errorf("invalid LSN %q: %w", s, err)
	}
	return LSN(hi<<32 | lo), nil
}

// SegNo is a segment number: a timeline-relative, monotonically
// increasing index of WAL segment files. It is deliberately distinct
// from byte offsets (see BytesPerSegment) to avoid the overload the
// original C source carried in a single "xlog_seg_size" field.
type SegNo uint64

// SegNoOf returns the segment number containing lsn, given how many
// bytes make up one WAL segment on this instance.
func SegNoOf(lsn LSN, bytesPerSegment uint64) SegNo {
	if bytesPerSegment == 0 {
		return 0
	}
	return SegNo(uint64(lsn) / bytesPerSegment)
}

// SegmentsPerLog is the number of segments in one "logical" WAL file
// number as encoded in a WAL segment's filename (the middle 8 hex
// digits). It is derived from BytesPerSegment: a logical log wraps
// every 2^32 bytes of WAL.
func SegmentsPerLog(bytesPerSegment uint64) uint64 {
	if bytesPerSegment == 0 {
		return 0
	}
	return (uint64(1) << 32) / bytesPerSegment
}

// SegNoFromLogSeg reconstructs a segment number from the (log, seg)
// pair encoded in a WAL filename, per spec: segno = log*segments_per_log + seg.
func SegNoFromLogSeg(log, seg uint32, bytesPerSegment uint64) SegNo {
	return SegNo(uint64(log)*SegmentsPerLog(bytesPerSegment) + uint64(seg))
}
