package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/quillback/quill/internal/chunker"
	"github.com/quillback/quill/internal/config"
	"github.com/quillback/quill/internal/embed"
	"github.com/quillback/quill/internal/parser"
	"github.com/quillback/quill/internal/pipeline"
	"github.com/quillback/quill/internal/source"
	"github.com/quillback/quill/internal/store"
	"github.com/quillback/quill/internal/tasks"
	"github.com/quillback/quill/internal/transport"
)

// Worker consumes queued ingest tasks and runs them through the
// ingestion pipeline.
type Worker struct {
	cfg *config.Config

	rdb         *redis.Client
	asynqServer *asynq.Server
}

func New(cfg *config.Config) *Worker {
	return &Worker{cfg: cfg}
}

func (w *Worker) Start() error {
	ctx := context.Background()

	w.rdb = redis.NewClient(&redis.Options{
		Addr:     w.cfg.Transport.Addr,
		Username: w.cfg.Transport.Username,
		Password: w.cfg.Transport.Password,
		DB:       w.cfg.Transport.DB,
	})
	defer w.rdb.Close()

	w.asynqServer = asynq.NewServerFromRedisClient(
		w.rdb,
		asynq.Config{Concurrency: w.cfg.Worker.Concurrency},
	)

	rt := transport.NewRedisTransport(w.rdb)

	runner, cleanup, err := BuildRunner(ctx, w.cfg, rt)
	if err != nil {
		return err
	}
	defer cleanup()

	sources := make(map[string]source.Source, len(w.cfg.Sources))
	for name, scfg := range w.cfg.Sources {
		src, err := source.NewSource(ctx, scfg)
		if err != nil {
			return fmt.Errorf("failed to initialize source '%s': %w", name, err)
		}
		sources[name] = src
	}

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeIngest, tasks.NewTaskHandler(runner, sources))

	return w.asynqServer.Run(mux)
}

// BuildRunner wires a pipeline runner from configuration. Passing a nil
// transport disables per-document locking and tracing, which is fine
// for single-process runs. The returned cleanup closes the vector
// store connection.
func BuildRunner(ctx context.Context, cfg *config.Config, rt *transport.RedisTransport) (*pipeline.Runner, func(), error) {
	st, err := store.NewStore(ctx, store.Config{
		Type: cfg.VectorStore.Type,
		Host: cfg.VectorStore.Host,
		Port: cfg.VectorStore.Port,
		DSN:  cfg.VectorStore.DSN,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	cleanup := func() { st.Close() }

	var figs store.FigureStore
	switch cfg.FigureStore.Type {
	case "s3":
		figs, err = store.NewS3FigureStore(ctx, cfg.FigureStore.Bucket)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to initialize figure store: %w", err)
		}
	case "", "memory":
		figs = store.NewMemoryFigureStore()
	default:
		cleanup()
		return nil, nil, fmt.Errorf("invalid figure store type '%s'", cfg.FigureStore.Type)
	}

	prov, err := embed.NewProvider(cfg.Embedder.Provider, cfg.Embedder.Dimensions)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	var embOpts []embed.ContextualOption
	if cfg.Embedder.BatchSize > 0 {
		embOpts = append(embOpts, embed.WithMaxBatchSize(cfg.Embedder.BatchSize))
	}
	if cfg.Embedder.BatchTokens > 0 {
		embOpts = append(embOpts, embed.WithMaxBatchTokens(cfg.Embedder.BatchTokens))
	}
	if cfg.Embedder.MaxAttempts > 0 {
		embOpts = append(embOpts, embed.WithMaxAttempts(cfg.Embedder.MaxAttempts))
	}
	if cfg.Embedder.RequestsPerSecond > 0 {
		embOpts = append(embOpts, embed.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Embedder.RequestsPerSecond), 1)))
	}

	p, err := parser.NewParser(cfg.Ingest.Parser)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	co := pipeline.NewCoordinator(
		p,
		chunker.New(chunker.Config{
			MaxTokens:            cfg.Ingest.MaxTokens,
			MinTailTokens:        cfg.Ingest.MinTailTokens,
			HeadingSplitFraction: cfg.Ingest.HeadingSplitFraction,
		}),
		embed.NewContextual(prov, embOpts...),
		store.NewReplacer(st, figs, cfg.VectorStore.Collection, cfg.Embedder.Dimensions),
		pipeline.WithRetainImages(cfg.Ingest.RetainImages),
	)

	ropts := []pipeline.RunnerOption{pipeline.WithWorkers(cfg.Worker.Concurrency)}
	if rt != nil {
		ropts = append(ropts, pipeline.WithLocker(rt), pipeline.WithTracer(rt))
	}
	return pipeline.NewRunner(co, ropts...), cleanup, nil
}
