// Package control reads and writes a backup's backup.control file: a
// key=value stanza grouped into #Configuration, #Compatibility, and
// #Result backup info sections (spec.md 4.2), written atomically via
// temp-file + rename.
//
// Grounded on pgBackupWriteControl / readBackupControlFile /
// write_backup in original_source/src/catalog.c.
package control

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/errs"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/pathid"
)

const timeLayout = "2006-01-02 15:04:05-07:00"

// Write serialises backup to path atomically: it writes to
// "<path>.tmp" (suffixed further with a random token so concurrent
// writers in the same process never collide before either renames),
// flushes, fsyncs (when the writer has a Sync method, as *os.File
// does), closes, then renames over path. Any failure unlinks the temp
// file and returns a *errs.FatalError.
func Write(fs fio.FS, path string, backup *model.Backup) error {
	tmp := path + ".tmp." + uuid.NewString()

	w, err := fs.Create(tmp)
	if err != nil {
		return errs.Fatal("control.Write: create temp file", err)
	}

	if werr := writeControl(w, backup); werr != nil {
		_ = w.Close()
		_ = fs.Remove(tmp)
		return errs.Fatal("control.Write: write", werr)
	}

	if s, ok := w.(interface{ Sync() error }); ok {
		if serr := s.Sync(); serr != nil {
			_ = w.Close()
			_ = fs.Remove(tmp)
			return errs.Fatal("control.Write: fsync", serr)
		}
	}

	if cerr := w.Close(); cerr != nil {
		_ = fs.Remove(tmp)
		return errs.Fatal("control.Write: close", cerr)
	}

	if rerr := fs.Rename(tmp, path); rerr != nil {
		_ = fs.Remove(tmp)
		return errs.Fatal("control.Write: rename", rerr)
	}

	return nil
}

func writeControl(w io.Writer, b *model.Backup) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "#Configuration\n")
	fmt.Fprintf(bw, "backup-mode = %s\n", b.Mode)
	fmt.Fprintf(bw, "stream = %s\n", boolStr(b.Stream))
	fmt.Fprintf(bw, "compress-alg = %s\n", b.CompressAlg)
	fmt.Fprintf(bw, "compress-level = %d\n", b.CompressLevel)
	fmt.Fprintf(bw, "from-replica = %s\n", boolStr(b.FromReplica))

	fmt.Fprintf(bw, "\n#Compatibility\n")
	fmt.Fprintf(bw, "block-size = %d\n", b.BlockSize)
	fmt.Fprintf(bw, "xlog-block-size = %d\n", b.WalBlockSize)
	fmt.Fprintf(bw, "checksum-version = %d\n", b.ChecksumVersion)
	if b.ProgramVersion != "" {
		fmt.Fprintf(bw, "program-version = %s\n", b.ProgramVersion)
	}
	if b.ServerVersion != "" {
		fmt.Fprintf(bw, "server-version = %s\n", b.ServerVersion)
	}

	fmt.Fprintf(bw, "\n#Result backup info\n")
	fmt.Fprintf(bw, "timelineid = %d\n", b.TLI)
	fmt.Fprintf(bw, "start-lsn = %s\n", b.StartLSN)
	fmt.Fprintf(bw, "stop-lsn = %s\n", b.StopLSN)
	fmt.Fprintf(bw, "start-time = '%s'\n", formatTime(b.StartTime))
	if !b.MergeTime.IsZero() {
		fmt.Fprintf(bw, "merge-time = '%s'\n", formatTime(b.MergeTime))
	}
	if !b.EndTime.IsZero() {
		fmt.Fprintf(bw, "end-time = '%s'\n", formatTime(b.EndTime))
	}
	fmt.Fprintf(bw, "recovery-xid = %d\n", b.RecoveryXID)
	if !b.RecoveryTime.IsZero() {
		fmt.Fprintf(bw, "recovery-time = '%s'\n", formatTime(b.RecoveryTime))
	}

	if b.DataBytes != model.BytesInvalid {
		fmt.Fprintf(bw, "data-bytes = %d\n", b.DataBytes)
	}
	if b.WalBytes != model.BytesInvalid {
		fmt.Fprintf(bw, "wal-bytes = %d\n", b.WalBytes)
	}
	if b.UncompressedBytes >= 0 {
		fmt.Fprintf(bw, "uncompressed-bytes = %d\n", b.UncompressedBytes)
	}
	if b.PgdataBytes >= 0 {
		fmt.Fprintf(bw, "pgdata-bytes = %d\n", b.PgdataBytes)
	}

	fmt.Fprintf(bw, "status = %s\n", b.Status)

	if b.ParentBackup != 0 {
		fmt.Fprintf(bw, "parent-backup-id = '%s'\n", pathid.Base36Encode(uint64(b.ParentBackup)))
	}
	if b.PrimaryConninfo != "" {
		fmt.Fprintf(bw, "primary_conninfo = '%s'\n", b.PrimaryConninfo)
	}
	if b.ExternalDirStr != "" {
		fmt.Fprintf(bw, "external-dirs = '%s'\n", b.ExternalDirStr)
	}

	return bw.Flush()
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}
