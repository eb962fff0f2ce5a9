package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the analysis queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			items, err := client.Queue(cmd.Context(), statuses)
			if err != nil {
				return err
			}
			con := newConsole(cmd)
			if jsonOutput {
				return con.json(items)
			}
			if len(items) == 0 {
				con.println("Queue is empty")
				return nil
			}

			headers := []string{"ID", "Status", "Stage", "Attempts", "Title", "Updated"}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				stage := item.Progress.Stage
				if item.ErrorMessage != "" {
					stage = item.ErrorMessage
				}
				rows = append(rows, []string{
					item.ID,
					item.StatusDetail,
					truncateText(stage, 40),
					fmt.Sprintf("%d", item.Attempts),
					truncateText(item.VideoTitle, 30),
					item.UpdatedAt,
				})
			}
			con.table(headers, rows, 3)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by lifecycle status (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completed bool
	var failed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if completed && failed {
				return fmt.Errorf("--completed and --failed are mutually exclusive")
			}
			scope := "all"
			if completed {
				scope = "completed"
			}
			if failed {
				scope = "failed"
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			removed, err := client.ClearQueue(cmd.Context(), scope)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d queue entries\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Only remove completed entries")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only remove failed entries")
	return cmd
}
