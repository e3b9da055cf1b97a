package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"innario/internal/api"
	"innario/internal/store"
)

func newWardsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "wards",
		Short: "List registered wards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				wards, err := st.ListWards(cmd.Context())
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, api.WardListResponse{Wards: api.FromWards(wards)})
				}

				out := cmd.OutOrStdout()
				if len(wards) == 0 {
					fmt.Fprintln(out, "No wards registered")
					return nil
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Name", "Stake", "Created"},
					buildWardRows(wards),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func buildWardRows(wards []*store.Ward) [][]string {
	rows := make([][]string, 0, len(wards))
	for _, ward := range wards {
		dto := api.FromWard(ward)
		stake := dto.StakeName
		if stake == "" {
			stake = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", dto.ID),
			dto.Name,
			stake,
			dto.CreatedAt,
		})
	}
	return rows
}
