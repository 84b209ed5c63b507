// Package layout creates a new backup's on-disk directory tree
// (spec.md 4.9), grounded on pgBackupCreateDir in
// original_source/src/catalog.c.
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/pathid"
)

// CreateBackupDir builds "database" plus one
// "external_directories/externaldir<N>" per ':'-separated entry in
// externalDirStr (1-indexed), refusing if the backup's directory
// already exists and is non-empty. Every directory is created with
// mode 0700.
func CreateBackupDir(fs fio.FS, root, instance string, startTime uint64, externalDirStr string) error {
	backupPath := pathid.BackupDir(root, instance, startTime)

	if fs.Exists(backupPath) {
		empty, err := fs.DirEmpty(backupPath)
		if err != nil {
			return fmt.Errorf("layout.CreateBackupDir: stat %s: %w", backupPath, err)
		}
		if !empty {
			return fmt.Errorf("layout.CreateBackupDir: %s already exists and is not empty", backupPath)
		}
	}

	subdirs := []string{pathid.DatabaseDirName}
	if externalDirStr != "" {
		for i, p := range strings.Split(externalDirStr, ":") {
			if p == "" {
				continue
			}
			subdirs = append(subdirs, filepath.Join(pathid.ExternalDirsName, pathid.ExternalDirName(i+1)))
		}
	}

	if err := fs.MkdirAll(backupPath, 0700); err != nil {
		return fmt.Errorf("layout.CreateBackupDir: mkdir %s: %w", backupPath, err)
	}
	for _, sd := range subdirs {
		full := filepath.Join(backupPath, sd)
		if err := fs.MkdirAll(full, 0700); err != nil {
			return fmt.Errorf("layout.CreateBackupDir: mkdir %s: %w", full, err)
		}
	}
	return nil
}
