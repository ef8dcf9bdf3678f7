package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/pipeline"
	"github.com/quillback/quill/internal/source"
)

type TaskHandler struct {
	runner  *pipeline.Runner
	sources map[string]source.Source
}

func NewTaskHandler(runner *pipeline.Runner, sources map[string]source.Source) *TaskHandler {
	return &TaskHandler{
		runner:  runner,
		sources: sources,
	}
}

func (h TaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	switch t.Type() {
	case TypeIngest:
		var p ingestTaskPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("invalid task payload: %v (%w)", err, asynq.SkipRetry)
		}
		return h.ingest(ctx, p)

	default:
		return fmt.Errorf("unrecognized task type (%w)", asynq.SkipRetry)
	}
}

func (h TaskHandler) ingest(ctx context.Context, p ingestTaskPayload) error {
	slog.Info("received ingest task", "source", p.Source, "file", p.SourceFile)

	src, ok := h.sources[p.Source]
	if !ok {
		return fmt.Errorf("unknown source '%s' (%w)", p.Source, asynq.SkipRetry)
	}

	file, err := src.Fetch(ctx, p.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to fetch '%s': %w", p.SourceFile, err)
	}

	res := h.runner.Run(ctx, []api.SourceFile{file})[0]
	if res.Status != pipeline.StatusFailed {
		return nil
	}

	switch res.Stage {
	case pipeline.StageParse, pipeline.StageChunk, pipeline.StageFigures:
		// deterministic failures reproduce on every attempt, the input
		// has to change first
		return fmt.Errorf("ingestion failed at %s: %v (%w)", res.Stage, res.Err, asynq.SkipRetry)
	default:
		return fmt.Errorf("ingestion failed at %s: %w", res.Stage, res.Err)
	}
}
