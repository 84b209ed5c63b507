package lock

import (
	"path/filepath"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/pathid"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/probe"
)

// LockBackupRange locks backups[0:count] in back-to-front order (in a
// descending-sorted scan result, the oldest of them, last in the
// slice, is locked first), stopping at the first failure. It returns the number
// of locks actually acquired, so the caller can release exactly those
// on a partial failure. Grounded on catalog_lock_backup_list in
// original_source/src/catalog.c.
func LockBackupRange(r *Registry, root, instance string, backups []*model.Backup, count int, live probe.Liveness) (int, error) {
	locked := 0
	for i := count - 1; i >= 0; i-- {
		b := backups[i]
		dir := pathid.BackupDir(root, instance, uint64(b.StartTimeUnix()))
		path := filepath.Join(dir, pathid.PidFileName)
		ok, err := r.Acquire(path, live)
		if err != nil {
			return locked, err
		}
		if !ok {
			return locked, nil
		}
		locked++
	}
	return locked, nil
}
