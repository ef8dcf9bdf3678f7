package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeIngest = "quill:ingest"
)

type ingestTaskPayload struct {
	Source     string
	SourceFile string
}

// NewIngestTask queues one document for ingestion. Source names a
// configured document source on the worker; sourceFile is the file's
// name relative to that source's root.
func NewIngestTask(sourceName string, sourceFile string) (*asynq.Task, error) {
	tp := ingestTaskPayload{
		Source:     sourceName,
		SourceFile: sourceFile,
	}
	payload, err := json.Marshal(tp)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeIngest, payload), nil
}
