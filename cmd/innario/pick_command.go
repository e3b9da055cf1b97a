package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"innario/internal/api"
	"innario/internal/dateutil"
	"innario/internal/hymnal"
	"innario/internal/selection"
)

func newPickCommand(ctx *commandContext) *cobra.Command {
	var (
		date        string
		firstSunday bool
		festive     bool
		festivity   string
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Preview a hymn selection without touching ward history",
		Long: "Pick draws a program straight from the local catalog. Nothing is\n" +
			"recorded and no ward history is consulted; use the API for planned,\n" +
			"history-aware selections.",
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := ctx.loadIndex()
			if err != nil {
				return err
			}

			target := dateutil.NextSunday(time.Now())
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("date %q is not in YYYY-MM-DD form", date)
				}
				target = parsed
			}

			first := dateutil.IsFirstSunday(target)
			if cmd.Flags().Changed("first-sunday") {
				first = firstSunday
			}

			fest, err := hymnal.ParseFestivity(festivity)
			if err != nil {
				return err
			}
			// Naming a festivity without --festive would be silently ignored
			// by the engine; treat it as a festive request.
			if cmd.Flags().Changed("festivity") && !cmd.Flags().Changed("festive") {
				festive = fest != hymnal.FestivityNone
			}

			selCtx := selection.Context{FirstSunday: first, Festive: festive, Festivity: fest}

			opts := []selection.Option{}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, selection.WithSampler(selection.NewSeededSampler(seed)))
			}
			engine := selection.NewEngine(index, opts...)

			hymns, err := engine.Select(selCtx)
			if err != nil {
				return err
			}

			preview := api.PlannedSelection(0, target, selCtx, hymns)
			if ctx.JSONMode() {
				return writeJSON(cmd, preview)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Selection preview for %s\n", preview.SundayLabel)
			fmt.Fprintf(out, "First Sunday: %s   Festive: %s", yesNo(preview.FirstSunday), yesNo(preview.Festive))
			if preview.Festivity != "" {
				fmt.Fprintf(out, "   Festivity: %s", preview.Festivity)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(out,
				[]string{"Position", "Number", "Title", "Category"},
				buildSelectionRows(preview.Hymns),
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Target Sunday (YYYY-MM-DD; defaults to the next Sunday)")
	cmd.Flags().BoolVar(&firstSunday, "first-sunday", false, "Force the first-Sunday three-hymn program")
	cmd.Flags().BoolVar(&festive, "festive", false, "Allow seasonal hymns for the target festivity")
	cmd.Flags().StringVar(&festivity, "festivity", "", "Festive season (natale or pasqua)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed the sampler for reproducible output")

	return cmd
}

func buildSelectionRows(hymns []api.SelectedHymn) [][]string {
	rows := make([][]string, 0, len(hymns))
	for _, hymn := range hymns {
		rows = append(rows, []string{
			fmt.Sprintf("%d", hymn.Position),
			fmt.Sprintf("%d", hymn.Number),
			hymn.Title,
			hymn.Category,
		})
	}
	return rows
}
