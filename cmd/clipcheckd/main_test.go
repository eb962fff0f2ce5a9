package main

import (
	"testing"

	"clipcheck/internal/config"
	"clipcheck/internal/queue"
	"clipcheck/internal/testsupport"
	"clipcheck/internal/workflow"
)

type fakeRegistrar struct {
	stages []workflow.Stage
}

func (f *fakeRegistrar) Register(stage workflow.Stage) {
	f.stages = append(f.stages, stage)
}

func TestRegisterStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	registrar := &fakeRegistrar{}
	registerStages(registrar, cfg, nil, nil, nil, nil)

	if len(registrar.stages) != 4 {
		t.Fatalf("expected 4 stages registered, got %d", len(registrar.stages))
	}

	expectations := []struct {
		name       string
		start      queue.Status
		processing queue.Status
		done       queue.Status
	}{
		{"capture", queue.StatusQueued, queue.StatusCapturing, queue.StatusCaptured},
		{"extract", queue.StatusCaptured, queue.StatusExtracting, queue.StatusExtracted},
		{"transcribe", queue.StatusExtracted, queue.StatusTranscribing, queue.StatusTranscribed},
		{"score", queue.StatusTranscribed, queue.StatusScoring, queue.StatusCompleted},
	}

	for i, stage := range registrar.stages {
		if stage.Handler == nil {
			t.Fatalf("stage %d handler is nil", i)
		}
		if stage.Name != expectations[i].name {
			t.Errorf("stage %d name: expected %q, got %q", i, expectations[i].name, stage.Name)
		}
		if stage.Start != expectations[i].start {
			t.Errorf("stage %d start: expected %s, got %s", i, expectations[i].start, stage.Start)
		}
		if stage.Processing != expectations[i].processing {
			t.Errorf("stage %d processing: expected %s, got %s", i, expectations[i].processing, stage.Processing)
		}
		if stage.Done != expectations[i].done {
			t.Errorf("stage %d done: expected %s, got %s", i, expectations[i].done, stage.Done)
		}
	}
}

func TestRegisterStagesNilRegistrar(t *testing.T) {
	registerStages(nil, &config.Config{}, nil, nil, nil, nil)
}
