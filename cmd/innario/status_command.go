package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"innario/internal/preflight"
)

type statusReport struct {
	Server statusServer       `json:"server"`
	Checks []preflight.Result `json:"checks"`
}

type statusServer struct {
	Running bool `json:"running"`
	PID     int  `json:"pid,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server state and preflight checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			probe := preflight.ProbeServer(cfg)
			checks := preflight.RunAll(cfg)

			if ctx.JSONMode() {
				return writeJSON(cmd, statusReport{
					Server: statusServer{Running: probe.Running, PID: probe.PID},
					Checks: checks,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Innario Status", colorize) {
				fmt.Fprintln(out, line)
			}
			serverKind := statusWarn
			if probe.Running {
				serverKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("Server", serverKind, probe.Detail(), colorize))
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(out,
				[]string{"Check", "State", "Detail"},
				buildCheckRows(checks),
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func buildCheckRows(checks []preflight.Result) [][]string {
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		state := "FAIL"
		if check.Passed {
			state = "OK"
		}
		rows = append(rows, []string{check.Name, state, check.Detail})
	}
	return rows
}
