package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipcheck/internal/results"
)

func newResultCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "result <job-id>",
		Short: "Fetch the analysis result for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			result, item, err := client.Result(cmd.Context(), args[0])
			if errors.Is(err, resultPending) {
				con := newConsole(cmd)
				if jsonOutput {
					return con.json(item)
				}
				con.printf("Job %s is %s\n", item.ID, item.Status)
				if item.Progress.Stage != "" {
					con.printf("  %s: %s\n", item.Progress.Stage, item.Progress.Message)
				}
				if item.ErrorMessage != "" {
					con.printf("  error: %s\n", item.ErrorMessage)
				}
				return nil
			}
			if err != nil {
				return err
			}
			return renderResult(cmd, result, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func renderResult(cmd *cobra.Command, result *results.AnalysisResult, jsonOutput bool) error {
	con := newConsole(cmd)
	if jsonOutput {
		return con.json(result)
	}

	con.section("Analysis " + result.JobID)
	con.printf("  Source:   %s\n", result.SourceURL)
	con.printf("  Title:    %s\n", result.VideoInfo.Title)
	con.printf("  Channel:  %s\n", result.VideoInfo.Channel)
	if result.ScreenshotPath != nil {
		con.printf("  Shot:     %s\n", *result.ScreenshotPath)
	}
	con.printf("  Scoring:  %s\n", result.ScoreSource)
	if result.Transcription.Language != "" {
		con.printf("  Language: %s\n", result.Transcription.Language)
	}
	con.println()

	if len(result.Transcription.Segments) == 0 {
		con.println("  (no transcript segments)")
		return nil
	}

	headers := []string{"Speaker", "Start", "End", "AI Prob", "Text"}
	rows := make([][]string, 0, len(result.Transcription.Segments))
	for _, segment := range result.Transcription.Segments {
		speaker := "-"
		if segment.Speaker != nil {
			speaker = *segment.Speaker
		}
		probability := "-"
		if segment.AIProbability != nil {
			probability = fmt.Sprintf("%.2f", *segment.AIProbability)
		}
		rows = append(rows, []string{
			speaker,
			fmt.Sprintf("%.1fs", segment.Start),
			fmt.Sprintf("%.1fs", segment.End),
			probability,
			truncateText(segment.Text, 70),
		})
	}
	con.table(headers, rows, 1, 2, 3)
	return nil
}

func truncateText(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
