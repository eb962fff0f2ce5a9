package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipcheck/internal/extraction"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "submit <url>",
		Short: "Queue a video page for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceURL := args[0]
			if !extraction.IsVideoURL(sourceURL) {
				return fmt.Errorf("%q is not a supported video url", sourceURL)
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			resp, err := client.Submit(cmd.Context(), sourceURL)
			if err != nil {
				return err
			}

			if !wait {
				con := newConsole(cmd)
				if jsonOutput {
					return con.json(resp)
				}
				con.printf("Queued analysis job %s\n", resp.JobID)
				con.printf("Fetch the outcome with `clipcheck result %s`\n", resp.JobID)
				return nil
			}

			return waitForResult(cmd, client, resp.JobID, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Block until the analysis completes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func waitForResult(cmd *cobra.Command, client *apiClient, jobID string, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	lastStage := ""

	for {
		result, item, err := client.Result(cmd.Context(), jobID)
		switch {
		case err == nil:
			return renderResult(cmd, result, jsonOutput)
		case errors.Is(err, resultPending):
			if item.Status == "failed" {
				return fmt.Errorf("analysis failed: %s", item.ErrorMessage)
			}
			if !jsonOutput && item.Progress.Stage != lastStage {
				lastStage = item.Progress.Stage
				fmt.Fprintf(out, "  %s: %s\n", item.Progress.Stage, item.Progress.Message)
			}
		default:
			return err
		}

		select {
		case <-cmd.Context().Done():
			return context.Canceled
		case <-time.After(2 * time.Second):
		}
	}
}
