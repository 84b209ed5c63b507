package timeline

import (
	"testing"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/stretchr/testify/require"
)

const bytesPerSeg = 16 * 1024 * 1024

func TestScanClassifiesAndDetectsGaps(t *testing.T) {
	mem := fio.NewMemFS()
	base := "/wal/pg1"
	mem.WriteFile(base+"/000000010000000000000001", make([]byte, bytesPerSeg))
	mem.WriteFile(base+"/000000010000000000000003", make([]byte, bytesPerSeg))
	mem.WriteFile(base+"/000000010000000000000003.00000028.backup", []byte("backup-history"))
	mem.WriteFile(base+"/garbage.txt", []byte("x"))

	timelines, err := Scan(mem, "/", "pg1", bytesPerSeg, nil, nil)
	require.NoError(t, err)
	require.Len(t, timelines, 1)

	tl := timelines[0]
	require.Equal(t, uint32(1), tl.TLI)
	require.Equal(t, 2, tl.NXlogFiles)
	require.Len(t, tl.LostSegments, 1)
	require.Equal(t, model.SegNo(2), tl.LostSegments[0].Begin)
	require.Equal(t, model.SegNo(2), tl.LostSegments[0].End)
}

func TestScanResolvesParentLinkFromHistory(t *testing.T) {
	mem := fio.NewMemFS()
	base := "/wal/pg1"
	mem.WriteFile(base+"/000000020000000000000005", make([]byte, bytesPerSeg))
	mem.WriteFile(base+"/00000002.history", []byte("1\t0/5000000\tswitch\n"))

	timelines, err := Scan(mem, "/", "pg1", bytesPerSeg, nil, nil)
	require.NoError(t, err)
	require.Len(t, timelines, 1)
	require.Equal(t, uint32(1), timelines[0].ParentTLI)
}

func TestScanBucketsBackupsByTLI(t *testing.T) {
	mem := fio.NewMemFS()
	base := "/wal/pg1"
	mem.WriteFile(base+"/000000010000000000000001", make([]byte, bytesPerSeg))

	backups := []*model.Backup{{BackupID: 100, TLI: 1}, {BackupID: 200, TLI: 2}}
	timelines, err := Scan(mem, "/", "pg1", bytesPerSeg, backups, nil)
	require.NoError(t, err)
	require.Len(t, timelines, 1)
	require.Len(t, timelines[0].Backups, 1)
	require.Equal(t, int64(100), timelines[0].Backups[0].BackupID)
}
