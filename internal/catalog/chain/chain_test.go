package chain

import (
	"testing"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/stretchr/testify/require"
)

func backupAt(id int64, mode model.BackupMode, status model.Status, parent int64) *model.Backup {
	return &model.Backup{BackupID: id, Mode: mode, Status: status, ParentBackup: parent, TLI: 1}
}

func link(backups ...*model.Backup) {
	for _, b := range backups {
		if b.ParentBackup == 0 {
			continue
		}
		for _, p := range backups {
			if p.BackupID == b.ParentBackup {
				b.ParentBackupLink = p
			}
		}
	}
}

func TestScanParentChainFullBase(t *testing.T) {
	full := backupAt(1, model.ModeFull, model.StatusOK, 0)
	delta := backupAt(2, model.ModeDelta, model.StatusOK, 1)
	link(full, delta)

	code, witness := ScanParentChain(delta)
	require.Equal(t, ChainFullBase, code)
	require.Same(t, full, witness)
}

func TestScanParentChainBroken(t *testing.T) {
	delta := backupAt(2, model.ModeDelta, model.StatusOK, 99)
	code, witness := ScanParentChain(delta)
	require.Equal(t, ChainBroken, code)
	require.Same(t, delta, witness)
}

func TestScanParentChainInvalidAncestor(t *testing.T) {
	full := backupAt(1, model.ModeFull, model.StatusError, 0)
	delta := backupAt(2, model.ModeDelta, model.StatusOK, 1)
	link(full, delta)

	code, witness := ScanParentChain(delta)
	require.Equal(t, ChainInvalidAncestor, code)
	require.Same(t, full, witness)
}

func TestFindParentFull(t *testing.T) {
	full := backupAt(1, model.ModeFull, model.StatusOK, 0)
	delta := backupAt(2, model.ModeDelta, model.StatusOK, 1)
	link(full, delta)
	require.Same(t, full, FindParentFull(delta, nil))
}

func TestIsProlific(t *testing.T) {
	full := backupAt(1, model.ModeFull, model.StatusOK, 0)
	c1 := backupAt(2, model.ModeDelta, model.StatusOK, 1)
	c2 := backupAt(3, model.ModeDelta, model.StatusOK, 1)
	backups := []*model.Backup{c2, c1, full}
	require.True(t, IsProlific(backups, full))
}

func TestCatalogLastDataBackupReturnsNewestChild(t *testing.T) {
	full := backupAt(1, model.ModeFull, model.StatusOK, 0)
	child1 := backupAt(2, model.ModeDelta, model.StatusOK, 1)
	child2 := backupAt(3, model.ModeDelta, model.StatusOK, 2)
	link(full, child1, child2)
	backups := []*model.Backup{child2, child1, full} // descending by id

	got := CatalogLastDataBackup(backups, 1, 0, nil)
	require.Same(t, child2, got)
}

func TestCatalogLastDataBackupFallsBackToFull(t *testing.T) {
	full := backupAt(1, model.ModeFull, model.StatusOK, 0)
	backups := []*model.Backup{full}
	got := CatalogLastDataBackup(backups, 1, 0, nil)
	require.Same(t, full, got)
}
