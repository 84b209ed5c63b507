package control

import (
	"testing"
	"time"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	mem := fio.NewMemFS()
	b := model.NewBackup()
	b.Mode = model.ModeFull
	b.Status = model.StatusOK
	b.TLI = 1
	b.StartLSN = model.LSN(0x16B2028)
	b.StopLSN = model.LSN(0x16B3000)
	b.StartTime = time.Unix(1700000000, 0).UTC()
	b.DataBytes = 12345
	b.CompressAlg = model.CompressZLIB
	b.CompressLevel = 5

	path := "/backups/pg1/s44we8/backup.control"
	require.NoError(t, Write(mem, path, b))

	got, err := Read(mem, path, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, model.ModeFull, got.Mode)
	require.Equal(t, model.StatusOK, got.Status)
	require.Equal(t, uint32(1), got.TLI)
	require.Equal(t, b.StartLSN, got.StartLSN)
	require.Equal(t, b.StopLSN, got.StopLSN)
	require.Equal(t, int64(12345), got.DataBytes)
	require.Equal(t, model.CompressZLIB, got.CompressAlg)
	require.Equal(t, 5, got.CompressLevel)
	require.Equal(t, b.StartTime.Unix(), got.BackupID)
}

func TestReadMissingFileIsNotFatal(t *testing.T) {
	mem := fio.NewMemFS()
	got, err := Read(mem, "/backups/pg1/nope/backup.control", nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestReadEmptyFileIsNotFatal(t *testing.T) {
	mem := fio.NewMemFS()
	mem.WriteFile("/backups/pg1/x/backup.control", []byte(""))
	got, err := Read(mem, "/backups/pg1/x/backup.control", nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestWriteStatusOverwritesOnlyStatus(t *testing.T) {
	mem := fio.NewMemFS()
	b := model.NewBackup()
	b.Mode = model.ModeFull
	b.Status = model.StatusRunning
	b.StartTime = time.Unix(1700000000, 0).UTC()
	path := "/backups/pg1/s44we8/backup.control"
	require.NoError(t, Write(mem, path, b))

	require.NoError(t, WriteStatus(mem, path, model.StatusOK, nil))

	got, err := Read(mem, path, nil)
	require.NoError(t, err)
	require.Equal(t, model.StatusOK, got.Status)
	require.Equal(t, model.ModeFull, got.Mode)
}
