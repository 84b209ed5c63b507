// Package scan walks the on-disk catalog tree and assembles in-memory
// instance/backup lists (spec.md 4.5), grounded on
// catalog_get_instance_list / catalog_get_backup_list /
// get_backup_filelist / get_backup_index_number in
// original_source/src/catalog.c.
package scan

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/control"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/filelist"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/pathid"
	"github.com/cloudnative-pg/pgcatalog/internal/logging"
)

// ListInstances enumerates "<root>/backups" subdirectories, each one a
// PostgreSQL instance the catalog tracks. A catalog with no instances
// yet is a warning, not an error: a fresh root is a normal starting
// state.
func ListInstances(fs fio.FS, root string, log *logging.Logger) ([]string, error) {
	entries, err := fs.ReadDir(filepath.Join(root, "backups"))
	if err != nil {
		if log != nil {
			log.Warn().Str("root", root).Err(err).Msg("no instances directory; treating as empty catalog")
		}
		return nil, nil
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir || strings.HasPrefix(e.Name, ".") {
			continue
		}
		names = append(names, e.Name)
	}
	if len(names) == 0 && log != nil {
		log.Warn().Str("root", root).Msg("catalog has no instances")
	}
	sort.Strings(names)
	return names, nil
}

// ListBackups scans "<root>/backups/<instance>", loading each
// backup's control file (synthesising an INVALID stub when it's
// missing or unreadable so garbage entries stay visible for cleanup),
// filters by wantedID if non-zero, sorts descending by start time, and
// resolves each non-FULL backup's ParentBackupLink via binary search.
func ListBackups(fs fio.FS, root, instance string, wantedID int64, log *logging.Logger) ([]*model.Backup, error) {
	dir := pathid.InstanceBackupsDir(root, instance)
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, nil
	}

	var backups []*model.Backup
	for _, e := range entries {
		if !e.IsDir || strings.HasPrefix(e.Name, ".") {
			continue
		}
		dirID := pathid.Base36Decode(e.Name)
		controlPath := filepath.Join(dir, e.Name, pathid.ControlFileName)

		b, rerr := control.Read(fs, controlPath, log)
		if rerr != nil {
			return nil, rerr
		}
		if b == nil {
			b = model.NewBackup()
			b.StartTime = unixTime(int64(dirID))
			b.BackupID = int64(dirID)
			b.Status = model.StatusInvalid
		} else if uint64(b.BackupID) != dirID && log != nil {
			log.Warn().Str("dir", e.Name).Int64("control_id", b.BackupID).
				Msg("control file id mismatches directory name, using control file value")
		}

		if wantedID != 0 && b.BackupID != wantedID {
			continue
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].BackupID > backups[j].BackupID })

	for _, b := range backups {
		if b.Mode == model.ModeFull || b.ParentBackup == 0 {
			continue
		}
		b.ParentBackupLink = findByStartTime(backups, b.ParentBackup)
	}

	return backups, nil
}

// findByStartTime binary-searches a descending-sorted slice for the
// element whose BackupID equals id.
func findByStartTime(backups []*model.Backup, id int64) *model.Backup {
	lo, hi := 0, len(backups)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case backups[mid].BackupID == id:
			return backups[mid]
		case backups[mid].BackupID > id:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return nil
}

// GetBackupIndex returns the index of backup within a descending-sorted
// scan result, or -1 if not present. Grounded on
// get_backup_index_number in original_source/src/catalog.c.
func GetBackupIndex(backups []*model.Backup, backup *model.Backup) int {
	for i, b := range backups {
		if b == backup || b.BackupID == backup.BackupID {
			return i
		}
	}
	return -1
}

// GetBackupFilelist loads a single backup's file list.
func GetBackupFilelist(fs fio.FS, root, instance string, backup *model.Backup) ([]*model.BackupFile, error) {
	path := filepath.Join(pathid.BackupDir(root, instance, uint64(backup.BackupID)), pathid.FileListName)
	return filelist.Read(fs, path)
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
