// admin.go - privacy maintenance from the command line
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/store"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Inspect and clean up visitor data",
	Long:  adminLong,
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard statistics as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			stats, err := st.Stats(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		})
	},
}

var adminForgetCmd = &cobra.Command{
	Use:   "forget <hashed-ip>",
	Short: "Delete every visit recorded for one visitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			n, err := st.DeleteVisitor(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no visits recorded for %s", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d visit records for %s\n", n, args[0])
			return nil
		})
	},
}

var adminPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete visits older than privacy.retention",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(cfg config.Config, st *store.Store) error {
			n, err := st.PurgeVisitorsBefore(cmd.Context(), time.Now().Add(-cfg.Privacy.Retention))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Privacy cleanup: removed %d visitor records older than %s\n", n, cfg.Privacy.Retention)
			return nil
		})
	},
}

func init() {
	adminCmd.AddCommand(adminStatsCmd, adminForgetCmd, adminPurgeCmd)
}

func withStore(cmd *cobra.Command, f func(config.Config, *store.Store) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	st, err := store.Open(cmd.Context(), cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	return f(cfg, st)
}
