package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			con := newConsole(cmd)
			if jsonOutput {
				return con.json(status)
			}

			con.section("Daemon")
			runningKind := statusError
			runningMsg := "not running"
			if status.Running {
				runningKind = statusOK
				runningMsg = fmt.Sprintf("pid %d", status.PID)
			}
			con.field("Daemon", runningKind, runningMsg)
			con.field("Queue DB", statusInfo, status.QueueDBPath)

			workflowKind := statusWarn
			workflowMsg := "stopped"
			if status.Workflow.Running {
				workflowKind = statusOK
				workflowMsg = "running"
			}
			if status.Workflow.LastError != "" {
				workflowKind = statusError
				workflowMsg = status.Workflow.LastError
			}
			con.field("Workflow", workflowKind, workflowMsg)

			con.println()
			con.section("Stages")
			for _, check := range status.Workflow.StageHealth {
				kind := statusOK
				message := "ready"
				if !check.Ready {
					kind = statusError
					message = check.Detail
				}
				con.field(check.Name, kind, message)
			}

			con.println()
			con.section("Dependencies")
			for _, dep := range status.Dependencies {
				kind := statusOK
				message := dep.Command
				if !dep.Available {
					message = dep.Detail
					if dep.Optional {
						kind = statusWarn
					} else {
						kind = statusError
					}
				}
				con.field(dep.Name, kind, message)
			}

			con.println()
			con.section("Queue")
			queue := status.Queue
			con.field("Total", statusInfo, fmt.Sprintf("%d", queue.Total))
			con.field("Queued", statusInfo, fmt.Sprintf("%d", queue.Queued))
			con.field("Processing", statusInfo, fmt.Sprintf("%d", queue.Processing))
			con.field("Completed", statusOK, fmt.Sprintf("%d", queue.Completed))
			failedKind := statusInfo
			if queue.Failed > 0 {
				failedKind = statusWarn
			}
			con.field("Failed", failedKind, fmt.Sprintf("%d", queue.Failed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
