// Package filelist streams a backup's file-list to/from newline-
// delimited JSON (spec.md 4.3), accumulating the three rollup byte
// totals a caller needs back on the Backup record.
//
// Grounded on write_backup_filelist in
// original_source/src/catalog.c.
package filelist

import (
	"encoding/json"
	"io"
	"regexp"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/errs"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/google/uuid"
)

// bufferSize mirrors the original's BUFFERSZ = BLCKSZ*500 flush window.
const bufferSize = 8192 * 500

// xlogFileNameRE matches a 24-hex-digit WAL segment filename, used to
// route regular-file bytes into wal_bytes instead of data_bytes.
var xlogFileNameRE = regexp.MustCompile(`^[0-9A-Fa-f]{24}$`)

// record is the JSON line for one BackupFile entry.
type record struct {
	Path           string  `json:"path"`
	Size           int64   `json:"size,string"`
	Mode           uint32  `json:"mode,string"`
	IsDatafile     int     `json:"is_datafile,string"`
	IsCFS          int     `json:"is_cfs,string"`
	CRC            uint32  `json:"crc"`
	CompressAlg    string  `json:"compress_alg"`
	ExternalDirNum int     `json:"external_dir_num,string"`
	DBOid          uint32  `json:"dbOid"`
	SegNo          *int64  `json:"segno,string,omitempty"`
	Linked         string  `json:"linked,omitempty"`
	NBlocks        *int    `json:"n_blocks,omitempty"`
}

// Totals holds the rollup byte counts computed while writing a file list.
type Totals struct {
	DataBytes         int64
	WalBytes          int64
	UncompressedBytes int64
}

// Writer buffers file-list entries and flushes them to the backing
// store in bufferSize windows, matching the original's fixed buffer.
type Writer struct {
	fs     fio.FS
	path   string
	tmp    string
	w      io.WriteCloser
	buf    []byte
	Totals Totals
}

// NewWriter opens "<path>.tmp.<uuid>" for writing.
func NewWriter(f fio.FS, path string) (*Writer, error) {
	tmp := path + ".tmp." + uuid.NewString()
	w, err := f.Create(tmp)
	if err != nil {
		return nil, errs.Fatal("filelist.NewWriter: create temp file", err)
	}
	return &Writer{fs: f, path: path, tmp: tmp, w: w, Totals: Totals{}}, nil
}

// WriteFile appends one entry and updates the rollup totals.
func (fw *Writer) WriteFile(file *model.BackupFile, isDir bool) error {
	if isDir {
		fw.Totals.DataBytes += 4096
		fw.Totals.UncompressedBytes += 4096
	} else if file.Size > 0 {
		if file.ExternalDirNum == 0 && xlogFileNameRE.MatchString(baseName(file.Path)) {
			fw.Totals.WalBytes += file.Size
		} else {
			fw.Totals.DataBytes += file.Size
			fw.Totals.UncompressedBytes += file.UncompressedSize
		}
	}

	rec := record{
		Path:           file.Path,
		Size:           file.Size,
		Mode:           file.Mode,
		IsDatafile:     boolToInt(file.IsDatafile),
		IsCFS:          boolToInt(file.IsCFS),
		CRC:            file.CRC,
		CompressAlg:    file.CompressAlg.String(),
		ExternalDirNum: file.ExternalDirNum,
		DBOid:          file.DBOid,
		Linked:         file.Linked,
	}
	if file.IsDatafile {
		rec.SegNo = file.SegNo
	}
	if file.NBlocks != nil {
		rec.NBlocks = file.NBlocks
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return errs.Fatal("filelist.WriteFile: marshal", err)
	}
	line = append(line, '\n')

	fw.buf = append(fw.buf, line...)
	if len(fw.buf) >= bufferSize {
		return fw.flush()
	}
	return nil
}

func (fw *Writer) flush() error {
	if len(fw.buf) == 0 {
		return nil
	}
	if _, err := fw.w.Write(fw.buf); err != nil {
		fw.abort()
		return errs.Fatal("filelist.flush: write", err)
	}
	fw.buf = fw.buf[:0]
	return nil
}

func (fw *Writer) abort() {
	_ = fw.w.Close()
	_ = fw.fs.Remove(fw.tmp)
}

// Close flushes any remaining buffered data, fsyncs it (when the writer
// has a Sync method, as *os.File does), and atomically renames the
// temp file over Writer's target path.
func (fw *Writer) Close() error {
	if err := fw.flush(); err != nil {
		return err
	}
	if s, ok := fw.w.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			fw.abort()
			return errs.Fatal("filelist.Close: fsync", err)
		}
	}
	if err := fw.w.Close(); err != nil {
		_ = fw.fs.Remove(fw.tmp)
		return errs.Fatal("filelist.Close: close", err)
	}
	if err := fw.fs.Rename(fw.tmp, fw.path); err != nil {
		_ = fw.fs.Remove(fw.tmp)
		return errs.Fatal("filelist.Close: rename", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
