package filelist

import (
	"bufio"
	"encoding/json"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/errs"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
)

// Read loads every entry of the file-list at path into memory rather
// than streaming it. scan.GetBackupFilelist is its catalog-level
// caller.
func Read(f fio.FS, path string) ([]*model.BackupFile, error) {
	r, err := f.Open(path)
	if err != nil {
		return nil, errs.Fatal("filelist.Read: open", err)
	}
	defer r.Close()

	var files []*model.BackupFile
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, errs.Fatal("filelist.Read: corrupted file list at "+path, err)
		}
		files = append(files, recordToFile(&rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Fatal("filelist.Read: scan", err)
	}
	return files, nil
}

func recordToFile(rec *record) *model.BackupFile {
	alg, _ := model.ParseCompressAlg(rec.CompressAlg)
	file := &model.BackupFile{
		Path:           rec.Path,
		Size:           rec.Size,
		Mode:           rec.Mode,
		IsDatafile:     rec.IsDatafile != 0,
		IsCFS:          rec.IsCFS != 0,
		CRC:            rec.CRC,
		CompressAlg:    alg,
		ExternalDirNum: rec.ExternalDirNum,
		DBOid:          rec.DBOid,
		Linked:         rec.Linked,
		NBlocks:        rec.NBlocks,
	}
	if rec.SegNo != nil {
		file.SegNo = rec.SegNo
	}
	return file
}
