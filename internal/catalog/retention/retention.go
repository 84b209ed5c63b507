// Package retention computes wal-depth retention per timeline
// (spec.md 4.8), grounded on the anchor_lsn / keep_segments half of
// catalog_get_timelines plus get_closest_backup / get_oldest_backup in
// original_source/src/catalog.c.
package retention

import (
	"sort"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
)

// Apply computes OldestBackup, ClosestBackup, AnchorLSN/AnchorTLI and
// KeepSegments for every timeline, then marks Keep on every WAL file.
// If walDepth <= 0, retention is skipped and timelines are returned
// unmodified (still with OldestBackup/ClosestBackup populated since
// those are cheap lookups independent of wal_depth).
func Apply(timelines []*model.Timeline, walDepth int, bytesPerSegment uint64) {
	byTLI := make(map[uint32]*model.Timeline, len(timelines))
	for _, t := range timelines {
		byTLI[t.TLI] = t
		t.OldestBackup = oldestBackup(t)
	}
	for _, t := range timelines {
		t.ClosestBackup = closestBackup(t)
	}

	if walDepth <= 0 {
		return
	}

	for _, t := range timelines {
		applyTimeline(t, walDepth, bytesPerSegment)
	}

	markKeepFlags(timelines, bytesPerSegment)
}

// oldestBackup returns the backup on t with the smallest valid
// start_lsn.
func oldestBackup(t *model.Timeline) *model.Backup {
	var oldest *model.Backup
	for _, b := range t.Backups {
		if !b.StartLSN.Valid() {
			continue
		}
		if oldest == nil || b.StartLSN < oldest.StartLSN {
			oldest = b
		}
	}
	return oldest
}

// closestBackup walks parent timelines, returning the OK/DONE backup
// with the greatest stop_lsn <= this timeline's switchpoint.
func closestBackup(t *model.Timeline) *model.Backup {
	for parent := t.ParentLink; parent != nil; parent = parent.ParentLink {
		var best *model.Backup
		for _, b := range parent.Backups {
			if !b.Status.Valid() {
				continue
			}
			if !b.StopLSN.Valid() || b.StopLSN > t.Switchpoint {
				continue
			}
			if best == nil || b.StopLSN > best.StopLSN {
				best = b
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

// descendingBackups returns t.Backups sorted descending by start_lsn,
// the order spec.md 4.8 step 1 requires for the anchor walk.
func descendingBackups(t *model.Timeline) []*model.Backup {
	out := append([]*model.Backup(nil), t.Backups...)
	sort.Slice(out, func(i, j int) bool { return out[i].StartLSN > out[j].StartLSN })
	return out
}

func applyTimeline(t *model.Timeline, walDepth int, bytesPerSegment uint64) {
	count := 0
	var anchor *model.Backup
	for _, b := range descendingBackups(t) {
		if !b.Status.Valid() || !b.StartLSN.Valid() || b.TLI == 0 {
			continue
		}
		count++
		if count == walDepth {
			anchor = b
			break
		}
	}

	if anchor != nil {
		t.AnchorLSN = anchor.StartLSN
		t.AnchorTLI = anchor.TLI
		extendKeepSegmentsForArchiveBackups(t, bytesPerSegment)
		return
	}

	if t.ClosestBackup == nil {
		return
	}
	t.AnchorLSN = t.ClosestBackup.StartLSN
	t.AnchorTLI = t.ClosestBackup.TLI

	switchSegno := model.SegNoOf(t.Switchpoint, bytesPerSegment)
	for parent := t.ParentLink; parent != nil; parent = parent.ParentLink {
		if parent.TLI != t.ClosestBackup.TLI {
			parent.KeepSegments = append(parent.KeepSegments, model.SegInterval{Begin: parent.BeginSegNo, End: switchSegno})
			switchSegno = model.SegNoOf(parent.Switchpoint, bytesPerSegment)
			continue
		}
		closestSegno := model.SegNoOf(t.ClosestBackup.StartLSN, bytesPerSegment)
		parent.KeepSegments = append(parent.KeepSegments, model.SegInterval{Begin: closestSegno, End: switchSegno})
		break
	}
}

func extendKeepSegmentsForArchiveBackups(t *model.Timeline, bytesPerSegment uint64) {
	for _, b := range descendingBackups(t) {
		if b.StartLSN >= t.AnchorLSN {
			continue
		}
		if b.Stream {
			continue
		}
		if !b.StartLSN.Valid() || b.TLI == 0 {
			continue
		}
		begin := model.SegNoOf(b.StartLSN, bytesPerSegment)
		end := model.SegNoOf(b.StopLSN, bytesPerSegment)
		if b.FromReplica {
			end++
		}
		t.KeepSegments = append(t.KeepSegments, model.SegInterval{Begin: begin, End: end})
	}
}

func markKeepFlags(timelines []*model.Timeline, bytesPerSegment uint64) {
	for _, t := range timelines {
		ownAnchor := t.IsOwnAnchor()
		var anchorSegno model.SegNo
		if ownAnchor {
			anchorSegno = model.SegNoOf(t.AnchorLSN, bytesPerSegment)
		}
		for _, f := range t.XlogFilelist {
			if ownAnchor && f.SegNo >= anchorSegno {
				f.Keep = true
				continue
			}
			for _, iv := range t.KeepSegments {
				if iv.Contains(f.SegNo) {
					f.Keep = true
					break
				}
			}
		}
	}
}
