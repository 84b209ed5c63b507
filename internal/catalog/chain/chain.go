// Package chain implements parent-chain logic over a scanned backup
// list (spec.md 4.6), grounded on find_parent_full_backup /
// scan_parent_chain / is_parent / catalog_get_last_data_backup /
// is_prolific in original_source/src/catalog.c.
package chain

import (
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/logging"
)

// ScanCode is the result of ScanParentChain.
type ScanCode int

const (
	// ChainBroken: the walk terminated at a non-FULL node.
	ChainBroken ScanCode = iota
	// ChainInvalidAncestor: intact to a FULL base, but some ancestor
	// is not OK/DONE.
	ChainInvalidAncestor
	// ChainFullBase: intact and every ancestor is OK/DONE.
	ChainFullBase
)

// FindParentFull walks ParentBackupLink to its end and returns the
// terminal backup if it is FULL. If the walk hits a nil link before
// finding a FULL backup, or terminates on a non-FULL backup, it warns
// and returns nil.
func FindParentFull(backup *model.Backup, log *logging.Logger) *model.Backup {
	cur := backup
	for cur.Mode != model.ModeFull {
		if cur.ParentBackupLink == nil {
			if log != nil {
				log.Warn().Int64("backup_id", backup.BackupID).Msg("parent chain broken before reaching a FULL backup")
			}
			return nil
		}
		cur = cur.ParentBackupLink
	}
	return cur
}

// ScanParentChain walks backup's parent chain to its root and
// classifies it.
func ScanParentChain(backup *model.Backup) (ScanCode, *model.Backup) {
	cur := backup
	oldestPresent := backup
	anyInvalid := !backup.Status.Valid()
	oldestInvalid := backup
	if backup.Status.Valid() {
		oldestInvalid = nil
	}

	for cur.Mode != model.ModeFull {
		if cur.ParentBackupLink == nil {
			return ChainBroken, oldestPresent
		}
		cur = cur.ParentBackupLink
		oldestPresent = cur
		if !cur.Status.Valid() {
			anyInvalid = true
			oldestInvalid = cur
		}
	}

	if anyInvalid {
		return ChainInvalidAncestor, oldestInvalid
	}
	return ChainFullBase, cur
}

// IsParent reports whether any ancestor of child (following
// ParentBackup/ParentBackupLink) has start time parentStartTime. If
// inclusive, child itself counts as its own ancestor.
func IsParent(parentStartTime int64, child *model.Backup, inclusive bool) bool {
	cur := child
	if inclusive && cur.BackupID == parentStartTime {
		return true
	}
	for cur.ParentBackupLink != nil {
		cur = cur.ParentBackupLink
		if cur.BackupID == parentStartTime {
			return true
		}
	}
	return false
}

// CatalogLastDataBackup finds the latest OK/DONE FULL on tli and
// returns the most recent backup whose intact parent chain resolves
// back to that FULL; when no newer backup qualifies, that is the FULL
// itself. It returns nil if tli has no OK/DONE FULL. backups must be
// sorted descending by
// start time (scan.ListBackups's order); currentStartTime identifies
// the caller's own in-progress backup, skipped silently.
func CatalogLastDataBackup(backups []*model.Backup, tli uint32, currentStartTime int64, log *logging.Logger) *model.Backup {
	var fullBase *model.Backup
	for _, b := range backups {
		if b.TLI == tli && b.Mode == model.ModeFull && b.Status.Valid() {
			fullBase = b
			break
		}
	}
	if fullBase == nil {
		return nil
	}

	// Second pass over the whole descending list, starting from the
	// newest backup (index 0): any child newer than fullBase is
	// encountered first; if none qualifies, the loop eventually
	// reaches fullBase itself and returns it (is_parent is inclusive).
	for _, b := range backups {
		if !b.Status.Valid() {
			if b.BackupID == currentStartTime {
				continue
			}
			if log != nil {
				log.Warn().Int64("backup_id", b.BackupID).Str("status", b.Status.String()).
					Msg("backup cannot be a parent: invalid status")
			}
			continue
		}

		code, witness := ScanParentChain(b)
		switch code {
		case ChainBroken:
			if log != nil {
				log.Warn().Int64("backup_id", b.BackupID).Int64("missing_parent", witness.ParentBackup).
					Msg("backup has missing parent, cannot be a parent")
			}
			continue
		case ChainInvalidAncestor:
			if log != nil {
				log.Warn().Int64("backup_id", b.BackupID).Int64("invalid_ancestor", witness.BackupID).
					Msg("backup has invalid parent, cannot be a parent")
			}
			continue
		case ChainFullBase:
			if IsParent(fullBase.BackupID, b, true) {
				return b
			}
		}
	}
	return nil
}

// IsProlific reports whether at least two OK/DONE backups directly
// name target as their parent.
func IsProlific(backups []*model.Backup, target *model.Backup) bool {
	count := 0
	for _, b := range backups {
		if b.ParentBackup == target.BackupID && b.Status.Valid() {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}
