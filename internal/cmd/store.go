package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medfront/medfront/internal/config"
	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/core/store"
	"github.com/medfront/medfront/internal/output"
)

// openStore loads configuration, opens the store, and applies migrations.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.FromViper()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the content store",
}

var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply store schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		fmt.Println("store schema is up to date")
		return nil
	},
}

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show content counts and recent entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		paperCount, err := db.CountPapers(cmd.Context())
		if err != nil {
			return err
		}

		newsFilter := core.ContentFilter{Page: 1, PageSize: 5}
		newsFilter.Normalize()
		recentNews, newsCount, err := db.ListNews(cmd.Context(), newsFilter)
		if err != nil {
			return err
		}

		_, userCount, err := db.ListUsers(cmd.Context(), 1, 1)
		if err != nil {
			return err
		}

		recentPapers, err := db.RecentPapers(cmd.Context(), 5)
		if err != nil {
			return err
		}

		fmt.Printf("papers: %d  news: %d  users: %d\n", paperCount, newsCount, userCount)

		if len(recentPapers) > 0 {
			fmt.Println("\nRecent papers:")
			fmt.Println(output.PaperTable(recentPapers))
		}
		if len(recentNews) > 0 {
			fmt.Println("\nRecent news:")
			fmt.Println(output.NewsTable(recentNews))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeStatsCmd)
}
