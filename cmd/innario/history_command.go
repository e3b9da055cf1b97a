package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"innario/internal/api"
	"innario/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <ward>",
		Short: "Show a ward's recorded selections, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				ward, err := resolveWard(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}

				selections, err := st.WardHistory(cmd.Context(), ward.ID, limit)
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, api.HistoryResponse{
						WardID:     ward.ID,
						Selections: api.FromStoredSelections(selections),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "History for %s (ward %d)\n", ward.Name, ward.ID)
				if len(selections) == 0 {
					fmt.Fprintln(out, "No selections recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Date", "First Sunday", "Festivity", "Hymns"},
					buildHistoryRows(api.FromStoredSelections(selections)),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of selections to show")
	return cmd
}

// resolveWard accepts either a numeric ward ID or a ward name.
func resolveWard(ctx context.Context, st *store.Store, ref string) (*store.Ward, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("ward name or id is required")
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		ward, err := st.GetWard(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("ward %d not found", id)
			}
			return nil, err
		}
		return ward, nil
	}

	ward, err := st.GetWardByName(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("ward %q not found", ref)
		}
		return nil, err
	}
	return ward, nil
}

func buildHistoryRows(selections []api.Selection) [][]string {
	rows := make([][]string, 0, len(selections))
	for _, sel := range selections {
		festivity := sel.Festivity
		if festivity == "" {
			festivity = "-"
		}
		numbers := make([]string, 0, len(sel.Hymns))
		for _, hymn := range sel.Hymns {
			numbers = append(numbers, strconv.Itoa(hymn.Number))
		}
		rows = append(rows, []string{
			sel.Date,
			yesNo(sel.FirstSunday),
			festivity,
			strings.Join(numbers, ", "),
		})
	}
	return rows
}
