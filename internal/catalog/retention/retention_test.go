package retention

import (
	"testing"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/stretchr/testify/require"
)

const bytesPerSeg = 16 * 1024 * 1024

func TestApplyFindsAnchorAtWalDepth(t *testing.T) {
	t1 := &model.Timeline{TLI: 1, BeginSegNo: 0, EndSegNo: 10}
	for i, lsn := range []model.LSN{5 * bytesPerSeg, 4 * bytesPerSeg, 3 * bytesPerSeg} {
		t1.Backups = append(t1.Backups, &model.Backup{BackupID: int64(i), TLI: 1, Status: model.StatusOK, StartLSN: lsn, StopLSN: lsn + 1000})
	}
	for i := uint64(0); i <= 10; i++ {
		t1.XlogFilelist = append(t1.XlogFilelist, &model.XlogFile{SegNo: model.SegNo(i), Type: model.XlogSegment})
	}

	Apply([]*model.Timeline{t1}, 2, bytesPerSeg)

	require.True(t, t1.AnchorLSN.Valid())
	require.Equal(t, uint32(1), t1.AnchorTLI)
	require.True(t, t1.IsOwnAnchor())

	// The anchor is the second-newest backup (segno 4); the older archive
	// backup at segno 3 adds the keep interval [3, 3].
	anchorSegno := model.SegNoOf(t1.AnchorLSN, bytesPerSeg)
	for _, f := range t1.XlogFilelist {
		if f.SegNo >= anchorSegno || f.SegNo == 3 {
			require.True(t, f.Keep, "segno %d should be kept", f.SegNo)
		} else {
			require.False(t, f.Keep, "segno %d should not be kept", f.SegNo)
		}
	}
}

func TestApplySkippedWhenWalDepthZero(t *testing.T) {
	t1 := &model.Timeline{TLI: 1}
	Apply([]*model.Timeline{t1}, 0, bytesPerSeg)
	require.False(t, t1.AnchorLSN.Valid())
}

func TestApplyInheritsAnchorFromClosestBackup(t *testing.T) {
	parent := &model.Timeline{TLI: 1, BeginSegNo: 0, EndSegNo: 20}
	parent.Backups = append(parent.Backups, &model.Backup{
		BackupID: 1, TLI: 1, Status: model.StatusOK,
		StartLSN: model.LSN(2 * bytesPerSeg), StopLSN: model.LSN(2*bytesPerSeg + 1000),
	})

	child := &model.Timeline{TLI: 2, ParentTLI: 1, ParentLink: parent, Switchpoint: model.LSN(5 * bytesPerSeg)}

	Apply([]*model.Timeline{parent, child}, 5, bytesPerSeg)

	require.NotNil(t, child.ClosestBackup)
	require.True(t, child.AnchorLSN.Valid())
	require.Equal(t, uint32(1), child.AnchorTLI)
	require.False(t, child.IsOwnAnchor())
	require.NotEmpty(t, parent.KeepSegments)
}
