package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"innario/internal/api"
	"innario/internal/musicapi"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Hymn catalog utilities",
	}

	catalogCmd.AddCommand(newCatalogFetchCommand(ctx))
	catalogCmd.AddCommand(newCatalogStatsCommand(ctx))

	return catalogCmd
}

func newCatalogFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the hymn catalog from the church music library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client, err := musicapi.New(cfg.Catalog.BaseURL, cfg.Catalog.Language)
			if err != nil {
				return fmt.Errorf("create music api client: %w", err)
			}

			fetchCtx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout())
			defer cancel()

			catalog, err := client.SaveCatalog(fetchCtx, cfg.Catalog.Path)
			if err != nil {
				return fmt.Errorf("fetch catalog: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetched %d hymns (%s edition)\n", len(catalog.Songs), cfg.Catalog.Language)
			fmt.Fprintf(out, "Wrote catalog to %s\n", cfg.Catalog.Path)
			return nil
		},
	}
}

func newCatalogStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the local hymn catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			index, err := ctx.loadIndex()
			if err != nil {
				return err
			}

			stats := api.FromIndex(index)
			if ctx.JSONMode() {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog path: %s\n", cfg.Catalog.Path)
			fmt.Fprintf(out, "Hymns: %d\n", stats.Total)
			fmt.Fprintf(out, "Sacramento pool: %d\n", stats.Sacramento)
			fmt.Fprintf(out, "Categories: %d\n", len(stats.Categories))
			fmt.Fprintf(out, "Tags: %d\n", len(stats.Tags))
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(out,
				[]string{"Category", "Hymns"},
				buildCategoryRows(stats.Categories),
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

// buildCategoryRows orders categories by hymn count, largest first, with ties
// broken by name.
func buildCategoryRows(categories map[string]int) [][]string {
	if len(categories) == 0 {
		return nil
	}
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if categories[names[i]] != categories[names[j]] {
			return categories[names[i]] > categories[names[j]]
		}
		return names[i] < names[j]
	})

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, fmt.Sprintf("%d", categories[name])})
	}
	return rows
}
