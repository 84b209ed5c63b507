package layout

import (
	"testing"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/stretchr/testify/require"
)

func TestCreateBackupDirWithExternalDirs(t *testing.T) {
	mem := fio.NewMemFS()
	err := CreateBackupDir(mem, "/data", "pg1", 1700000000, "/mnt/a:/mnt/b")
	require.NoError(t, err)

	require.True(t, mem.Exists("/data/backups/pg1/s44we8/database"))
	require.True(t, mem.Exists("/data/backups/pg1/s44we8/external_directories/externaldir1"))
	require.True(t, mem.Exists("/data/backups/pg1/s44we8/external_directories/externaldir2"))
}

func TestCreateBackupDirRefusesNonEmptyExisting(t *testing.T) {
	mem := fio.NewMemFS()
	require.NoError(t, CreateBackupDir(mem, "/data", "pg1", 1700000000, ""))
	mem.WriteFile("/data/backups/pg1/s44we8/database/stray", []byte("x"))

	err := CreateBackupDir(mem, "/data", "pg1", 1700000000, "")
	require.Error(t, err)
}
