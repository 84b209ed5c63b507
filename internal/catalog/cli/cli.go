// Package cli wires the catalog core into a cobra command tree. It is
// a thin driver over internal/catalog/...: every operation it exposes
// delegates straight into the core packages so the core stays
// reachable and testable end-to-end outside of unit tests.
package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/chain"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/config"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/control"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/layout"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/lock"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/pathid"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/probe"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/retention"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/scan"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/timeline"
	"github.com/cloudnative-pg/pgcatalog/internal/logging"
)

// rootState carries the values every subcommand needs, built once in
// PersistentPreRunE.
type rootState struct {
	root string
	fs   fio.FS
	log  *logging.Logger
}

var state rootState

// NewRootCmd builds the "pgcatalogctl" command tree.
func NewRootCmd() *cobra.Command {
	var catalogRoot string
	var jsonLogs bool
	var logLevel string

	root := &cobra.Command{
		Use:   "pgcatalogctl",
		Short: "Inspect and maintain a pgcatalog backup catalog",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			state = rootState{
				root: catalogRoot,
				fs:   fio.New(fio.HostFromEnv(nil)),
				log:  logging.NewLogger(logging.Config{Level: logLevel, JSONOutput: jsonLogs}),
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&catalogRoot, "catalog-root", ".", "catalog root directory")
	root.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newInstanceCmd(),
		newBackupCmd(),
		newTimelineCmd(),
		newRetentionCmd(),
	)
	return root
}

func newInstanceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "instance", Short: "Instance operations"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List instances tracked by this catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := scan.ListInstances(state.fs, state.root, state.log)
			if err != nil {
				return err
			}
			for _, n := range names {
				cfg, cerr := config.ReadInstanceConfig(state.root, n)
				if cerr != nil {
					return cerr
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\twal_seg_size=%s\twal_depth=%d\n",
					n, humanize.Bytes(cfg.BytesPerSegment()), cfg.WalDepth)
			}
			return nil
		},
	})
	return cmd
}

func newBackupCmd() *cobra.Command {
	var instance string
	var wantedID int64

	cmd := &cobra.Command{Use: "backup", Short: "Backup operations"}
	cmd.PersistentFlags().StringVar(&instance, "instance", "", "instance name")
	cmd.PersistentFlags().Int64Var(&wantedID, "id", 0, "filter by backup id")
	_ = cmd.MarkPersistentFlagRequired("instance")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List backups for an instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := scan.ListBackups(state.fs, state.root, instance, wantedID, state.log)
			if err != nil {
				return err
			}
			for _, b := range backups {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					pathid.Base36Encode(uint64(b.BackupID)), b.Mode, b.Status, humanize.Bytes(uint64(maxInt64(b.DataBytes, 0))))
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show a single backup's parent-chain status",
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := scan.ListBackups(state.fs, state.root, instance, wantedID, state.log)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				return fmt.Errorf("backup %d not found in instance %s", wantedID, instance)
			}
			b := backups[0]
			code, witness := chain.ScanParentChain(b)
			fmt.Fprintf(cmd.OutOrStdout(), "id=%s mode=%s status=%s chain=%v witness=%s\n",
				pathid.Base36Encode(uint64(b.BackupID)), b.Mode, b.Status, code, pathid.Base36Encode(uint64(witness.BackupID)))
			return nil
		},
	}

	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Acquire the exclusive lockfile for a backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(pathid.BackupDir(state.root, instance, uint64(wantedID)), pathid.PidFileName)
			r := lock.Default(state.fs)
			ok, err := r.Acquire(path, probe.OS{})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "backup %d is locked by a live process\n", wantedID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lock acquired for backup %d\n", wantedID)
			return nil
		},
	}

	unlockCmd := &cobra.Command{
		Use:   "unlock",
		Short: "Release all lockfiles held by this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			lock.Default(state.fs).ReleaseAll()
			return nil
		},
	}

	initDirCmd := &cobra.Command{
		Use:   "init-dir",
		Short: "Create a new backup's directory tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			externalDirs, _ := cmd.Flags().GetString("external-dirs")
			if err := layout.CreateBackupDir(state.fs, state.root, instance, uint64(wantedID), externalDirs); err != nil {
				return err
			}
			path := filepath.Join(pathid.BackupDir(state.root, instance, uint64(wantedID)), pathid.ControlFileName)
			b := model.NewBackup()
			b.StartTime = time.Unix(wantedID, 0).UTC()
			b.BackupID = wantedID
			b.Status = model.StatusRunning
			b.ExternalDirStr = externalDirs
			return control.Write(state.fs, path, b)
		},
	}
	initDirCmd.Flags().String("external-dirs", "", "colon-separated external directory paths")

	cmd.AddCommand(listCmd, showCmd, lockCmd, unlockCmd, initDirCmd)
	return cmd
}

func newTimelineCmd() *cobra.Command {
	var instance string
	cmd := &cobra.Command{Use: "timeline", Short: "Timeline operations"}
	cmd.PersistentFlags().StringVar(&instance, "instance", "", "instance name")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Scan the WAL archive and list timelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ReadInstanceConfig(state.root, instance)
			if err != nil {
				return err
			}
			backups, err := scan.ListBackups(state.fs, state.root, instance, 0, state.log)
			if err != nil {
				return err
			}
			timelines, err := timeline.Scan(state.fs, state.root, instance, cfg.BytesPerSegment(), backups, state.log)
			if err != nil {
				return err
			}
			for _, t := range timelines {
				fmt.Fprintf(cmd.OutOrStdout(), "tli=%d segments=%d size=%s lost=%d parent=%d\n",
					t.TLI, t.NXlogFiles, humanize.Bytes(uint64(t.Size)), len(t.LostSegments), t.ParentTLI)
			}
			return nil
		},
	})
	return cmd
}

func newRetentionCmd() *cobra.Command {
	var instance string
	cmd := &cobra.Command{Use: "retention", Short: "Retention operations"}
	cmd.PersistentFlags().StringVar(&instance, "instance", "", "instance name")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Compute and print wal-depth retention per timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ReadInstanceConfig(state.root, instance)
			if err != nil {
				return err
			}
			backups, err := scan.ListBackups(state.fs, state.root, instance, 0, state.log)
			if err != nil {
				return err
			}
			timelines, err := timeline.Scan(state.fs, state.root, instance, cfg.BytesPerSegment(), backups, state.log)
			if err != nil {
				return err
			}
			retention.Apply(timelines, cfg.WalDepth, cfg.BytesPerSegment())
			for _, t := range timelines {
				keep := 0
				for _, f := range t.XlogFilelist {
					if f.Keep {
						keep++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tli=%d anchor=%s anchor_tli=%d keep_files=%d/%d\n",
					t.TLI, t.AnchorLSN, t.AnchorTLI, keep, t.NXlogFiles)
			}
			return nil
		},
	})
	return cmd
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
