package control

import (
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/logging"
)

// WriteStatus re-reads the backup at path, overwrites only its status,
// and writes it back. Grounded on write_backup_status in
// original_source/src/catalog.c: if the backup cannot be re-read the
// function silently returns, since Read already logged the warning.
func WriteStatus(fs fio.FS, path string, status model.Status, log *logging.Logger) error {
	current, err := Read(fs, path, log)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}
	current.Status = status
	return Write(fs, path, current)
}
