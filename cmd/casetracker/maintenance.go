// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"casetracker/internal/database"
	"casetracker/internal/metrics"
	"casetracker/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		return database.Migrate(db)
	},
}

var clearNotesCmd = &cobra.Command{
	Use:   "clear-old-notes",
	Short: "Erase notes on cases not edited within the retention period",
	Long: `clear-old-notes nulls the notes of every case whose last edit is older
than --older-than (default NOTES_RETENTION, 90 days). Run it from cron or a
Kubernetes CronJob.`,
	Example: `  casetracker clear-old-notes
  casetracker clear-old-notes --older-than 720h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan == 0 {
			olderThan = cfg.NotesRetention
		}
		if olderThan < 0 {
			return fmt.Errorf("--older-than must be positive, got %v", olderThan)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		cutoff := time.Now().Add(-olderThan)
		n, err := store.NewCaseStore(db).ClearNotesBefore(cmd.Context(), cutoff)
		if err != nil {
			return err
		}
		metrics.NotesCleared.Add(float64(n))
		slog.Info("old notes cleared", "cases", n, "cutoff", cutoff.Format(time.RFC3339))
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared notes on %d case(s) last edited before %s\n", n, cutoff.Format(time.RFC3339))
		return nil
	},
}

func init() {
	clearNotesCmd.Flags().Duration("older-than", 0, "retention period (default NOTES_RETENTION)")
	rootCmd.AddCommand(migrateCmd, clearNotesCmd)
}
