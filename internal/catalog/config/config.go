// Package config loads a PostgreSQL instance's catalog configuration
// file ("<root>/backups/<instance>/pg_instance.conf"), the ambient
// settings list_instances delegates to (spec.md 4.5).
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
)

// ReadInstanceConfig reads "<root>/backups/<name>/pg_instance.conf"
// with viper, falling back to PostgreSQL's default WAL segment size
// and unlimited retention (wal_depth 0) when the file is missing.
func ReadInstanceConfig(root, name string) (*model.InstanceConfig, error) {
	v := viper.New()
	// The full file name: ".conf" is not one of viper's searched
	// extensions, but with a config type set viper also looks for the
	// bare config name.
	v.SetConfigName("pg_instance.conf")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(root, "backups", name))
	v.SetDefault("wal_seg_size", model.DefaultWalSegSize)
	v.SetDefault("wal_depth", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config.ReadInstanceConfig: %s: %w", name, err)
		}
	}

	return &model.InstanceConfig{
		Name:       name,
		WalSegSize: v.GetUint64("wal_seg_size"),
		WalDepth:   v.GetInt("wal_depth"),
	}, nil
}
