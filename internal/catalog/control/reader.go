package control

import (
	"bufio"
	"strconv"
	"strings"
	"time"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/pathid"
	"github.com/cloudnative-pg/pgcatalog/internal/logging"
)

// Read parses the backup.control file at path. Per spec.md 4.2, a
// missing file, an empty file, or one lacking the mandatory
// "start-time" key is not a failure: it returns (nil, nil) and logs a
// warning. A file that exists but cannot be opened is handled the same
// way, so the returned error is always nil.
func Read(fs fio.FS, path string, log *logging.Logger) (*model.Backup, error) {
	r, err := fs.Open(path)
	if err != nil {
		if log != nil {
			log.Warn().Str("path", path).Err(err).Msg("control file does not exist or cannot be opened")
		}
		return nil, nil
	}
	defer r.Close()

	backup := model.NewBackup()
	opts := map[string]string{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.Trim(strings.TrimSpace(line[idx+1:]), "'")
		opts[key] = val
	}

	if len(opts) == 0 {
		if log != nil {
			log.Warn().Str("path", path).Msg("control file is empty")
		}
		return nil, nil
	}

	applyOptions(backup, opts, log, path)

	if backup.StartTime.IsZero() {
		if log != nil {
			log.Warn().Str("path", path).Msg("invalid id/start-time, control file is corrupted")
		}
		return nil, nil
	}

	backup.BackupID = backup.StartTime.Unix()
	return backup, nil
}

func applyOptions(b *model.Backup, opts map[string]string, log *logging.Logger, path string) {
	warn := func(msg string) {
		if log != nil {
			log.Warn().Str("path", path).Msg(msg)
		}
	}

	if v, ok := opts["backup-mode"]; ok {
		if m, err := model.ParseBackupMode(v); err == nil {
			b.Mode = m
		} else {
			warn("invalid backup-mode \"" + v + "\"")
		}
	}
	if v, ok := opts["timelineid"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			b.TLI = uint32(n)
		}
	}
	if v, ok := opts["start-lsn"]; ok {
		if lsn, err := model.ParseLSN(v); err == nil {
			b.StartLSN = lsn
		} else {
			warn("invalid start-lsn \"" + v + "\"")
		}
	}
	if v, ok := opts["stop-lsn"]; ok {
		if lsn, err := model.ParseLSN(v); err == nil {
			b.StopLSN = lsn
		} else {
			warn("invalid stop-lsn \"" + v + "\"")
		}
	}
	if v, ok := opts["start-time"]; ok {
		if t, err := parseTime(v); err == nil {
			b.StartTime = t
		}
	}
	if v, ok := opts["merge-time"]; ok {
		if t, err := parseTime(v); err == nil {
			b.MergeTime = t
		}
	}
	if v, ok := opts["end-time"]; ok {
		if t, err := parseTime(v); err == nil {
			b.EndTime = t
		}
	}
	if v, ok := opts["recovery-xid"]; ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			b.RecoveryXID = n
		}
	}
	if v, ok := opts["recovery-time"]; ok {
		if t, err := parseTime(v); err == nil {
			b.RecoveryTime = t
		}
	}
	if v, ok := opts["data-bytes"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			b.DataBytes = n
		}
	}
	if v, ok := opts["wal-bytes"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			b.WalBytes = n
		}
	}
	if v, ok := opts["uncompressed-bytes"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			b.UncompressedBytes = n
		}
	}
	if v, ok := opts["pgdata-bytes"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			b.PgdataBytes = n
		}
	}
	if v, ok := opts["block-size"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			b.BlockSize = uint32(n)
		}
	}
	if v, ok := opts["xlog-block-size"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			b.WalBlockSize = uint32(n)
		}
	}
	if v, ok := opts["checksum-version"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			b.ChecksumVersion = uint32(n)
		}
	}
	if v, ok := opts["program-version"]; ok {
		b.ProgramVersion = v
	}
	if v, ok := opts["server-version"]; ok {
		b.ServerVersion = v
	}
	if v, ok := opts["stream"]; ok {
		b.Stream = v == "true"
	}
	if v, ok := opts["status"]; ok {
		st := model.ParseStatus(v)
		if st == model.StatusInvalid {
			warn("invalid status \"" + v + "\"")
		}
		b.Status = st
	}
	if v, ok := opts["parent-backup-id"]; ok {
		b.ParentBackup = int64(pathid.Base36Decode(v))
	}
	if v, ok := opts["compress-alg"]; ok {
		if a, err := model.ParseCompressAlg(v); err == nil {
			b.CompressAlg = a
		}
	}
	if v, ok := opts["compress-level"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			b.CompressLevel = n
		}
	}
	if v, ok := opts["from-replica"]; ok {
		b.FromReplica = v == "true"
	}
	if v, ok := opts["primary_conninfo"]; ok {
		b.PrimaryConninfo = v
	}
	if v, ok := opts["external-dirs"]; ok {
		b.ExternalDirStr = v
	}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
