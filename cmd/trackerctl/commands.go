package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/config"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/auth"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/importer"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/maintenance"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/service"
)

var (
	dryRun    bool
	olderThan time.Duration

	listCategory  string
	listStatus    string
	listQuery     string
	listDueBefore string

	tokenTTL time.Duration
)

func init() {
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate rows without writing them")
	purgeCmd.Flags().DurationVar(&olderThan, "older-than", 0, "purge tombstones older than this (defaults to TOMBSTONE_RETENTION)")
	listCmd.Flags().StringVar(&listCategory, "category", "", "only projects in this category")
	listCmd.Flags().StringVar(&listStatus, "status", "", "only projects with this status")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "case-insensitive title substring")
	listCmd.Flags().StringVar(&listDueBefore, "due-before", "", "only projects due before this date (YYYY-MM-DD)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(importCmd, purgeCmd, getCmd, listCmd, tokenCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <Development_Status.csv>",
	Short: "Seed projects from the legacy CSV export",
	Long: `Create one project per CSV row. Ids are derived from the project name, so
re-running an import skips rows that already exist.

Examples:
  trackerctl import Development_Status.csv
  trackerctl import --dry-run Development_Status.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		res, err := importer.New(e.store, e.log).DryRun(dryRun).Import(cmd.Context(), f)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "created %d, skipped %d, failed %d\n", len(res.Created), len(res.Skipped), len(res.Failed))
		for _, rf := range res.Failed {
			fmt.Fprintf(out, "  %s\n", rf.Error())
		}
		if len(res.Failed) > 0 {
			return fmt.Errorf("%d rows failed", len(res.Failed))
		}
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Hard-delete old tombstones now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		retention := e.cfg.Store.TombstoneRetention
		if olderThan > 0 {
			retention = olderThan
		}
		n, err := maintenance.NewScheduler(e.store, maintenance.Options{Retention: retention, Logger: e.log}).RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d tombstones\n", n)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one project as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		p, err := e.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print matching projects as JSON, soonest due first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := listFilter()
		if err != nil {
			return err
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		items, err := service.NewProjectService(e.store, e.log).List(cmd.Context(), f)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), items)
	},
}

func listFilter() (domain.Filter, error) {
	f := domain.Filter{
		Category: domain.Category(listCategory),
		Status:   domain.Status(listStatus),
		Query:    listQuery,
	}
	if listDueBefore != "" {
		d, err := domain.ParseDate(listDueBefore)
		if err != nil {
			return f, fmt.Errorf("--due-before: %w", err)
		}
		f.DueBefore = &d
	}
	return f, nil
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Sign an API bearer token with SECRET_KEY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Auth.SecretKey == "" {
			return fmt.Errorf("SECRET_KEY is not set")
		}
		tok, err := auth.NewVerifier(cfg.Auth.SecretKey).Sign(args[0], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}
