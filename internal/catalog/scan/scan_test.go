package scan

import (
	"testing"
	"time"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/control"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/pathid"
	"github.com/stretchr/testify/require"
)

func writeBackup(t *testing.T, mem *fio.MemFS, root, instance string, startTime int64, mode model.BackupMode, parent int64) {
	t.Helper()
	b := model.NewBackup()
	b.Mode = mode
	b.Status = model.StatusOK
	b.StartTime = time.Unix(startTime, 0).UTC()
	b.ParentBackup = parent
	path := pathid.BackupDir(root, instance, uint64(startTime), "backup.control")
	require.NoError(t, control.Write(mem, path, b))
}

func TestListBackupsSortsDescendingAndLinksParent(t *testing.T) {
	mem := fio.NewMemFS()
	writeBackup(t, mem, "/data", "pg1", 1700000000, model.ModeFull, 0)
	writeBackup(t, mem, "/data", "pg1", 1700001000, model.ModeDelta, 1700000000)

	backups, err := ListBackups(mem, "/data", "pg1", 0, nil)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	require.Equal(t, int64(1700001000), backups[0].BackupID)
	require.Equal(t, int64(1700000000), backups[1].BackupID)
	require.Same(t, backups[1], backups[0].ParentBackupLink)
}

func TestListBackupsSynthesizesStubForUnreadableControl(t *testing.T) {
	mem := fio.NewMemFS()
	mem.WriteFile(pathid.BackupDir("/data", "pg1", 1700000000, "backup.control"), []byte("garbage no start time"))

	backups, err := ListBackups(mem, "/data", "pg1", 0, nil)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	require.Equal(t, model.StatusInvalid, backups[0].Status)
	require.Equal(t, int64(1700000000), backups[0].BackupID)
}

func TestGetBackupIndex(t *testing.T) {
	mem := fio.NewMemFS()
	writeBackup(t, mem, "/data", "pg1", 1700000000, model.ModeFull, 0)
	writeBackup(t, mem, "/data", "pg1", 1700001000, model.ModeDelta, 1700000000)
	backups, err := ListBackups(mem, "/data", "pg1", 0, nil)
	require.NoError(t, err)
	require.Equal(t, 1, GetBackupIndex(backups, backups[1]))
}
