package main

import (
	"log/slog"

	"clipcheck/internal/browser"
	"clipcheck/internal/capture"
	"clipcheck/internal/config"
	"clipcheck/internal/extraction"
	"clipcheck/internal/queue"
	"clipcheck/internal/results"
	"clipcheck/internal/scoring"
	"clipcheck/internal/transcript"
	"clipcheck/internal/workflow"
)

type stageRegistrar interface {
	Register(workflow.Stage)
}

func registerStages(reg stageRegistrar, cfg *config.Config, store *queue.Store, resultStore *results.Store, pool *browser.Pool, logger *slog.Logger) {
	if reg == nil || cfg == nil {
		return
	}

	reg.Register(workflow.Stage{
		Name:       "capture",
		Start:      queue.StatusQueued,
		Processing: queue.StatusCapturing,
		Done:       queue.StatusCaptured,
		Handler:    capture.NewCapturer(cfg, store, logger, pool),
	})
	reg.Register(workflow.Stage{
		Name:       "extract",
		Start:      queue.StatusCaptured,
		Processing: queue.StatusExtracting,
		Done:       queue.StatusExtracted,
		Handler:    extraction.NewExtractor(cfg, store, logger),
	})
	reg.Register(workflow.Stage{
		Name:       "transcribe",
		Start:      queue.StatusExtracted,
		Processing: queue.StatusTranscribing,
		Done:       queue.StatusTranscribed,
		Handler:    transcript.NewTranscriber(cfg, store, logger),
	})
	reg.Register(workflow.Stage{
		Name:       "score",
		Start:      queue.StatusTranscribed,
		Processing: queue.StatusScoring,
		Done:       queue.StatusCompleted,
		Handler:    scoring.NewScorer(cfg, store, logger, resultStore),
	})
}
