package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/config"
	"github.com/quillback/quill/internal/pipeline"
	"github.com/quillback/quill/internal/source"
	"github.com/quillback/quill/internal/tasks"
	"github.com/quillback/quill/internal/transport"
	"github.com/quillback/quill/worker"
)

const (
	ProgramName   = "Quill"
	Version       = "v0.1.0"
	RepositoryUrl = "github.com/quillback/quill"
)

type ingestCmd struct {
	Source string `arg:"positional,required" help:"name of the configured source to ingest"`
	File   string `arg:"--file,-f" help:"ingest a single file instead of the whole source"`
}

type workerCmd struct{}

type enqueueCmd struct {
	Source string `arg:"positional,required" help:"name of the configured source to ingest"`
	File   string `arg:"--file,-f" help:"queue a single file instead of the whole source"`
}

type traceCmd struct {
	Doc string `arg:"positional,required" help:"document id or source file name"`
}

type args struct {
	Ingest  *ingestCmd  `arg:"subcommand:ingest" help:"ingest documents in-process"`
	Worker  *workerCmd  `arg:"subcommand:work" help:"start the quill worker"`
	Enqueue *enqueueCmd `arg:"subcommand:enqueue" help:"queue documents for background ingestion"`
	Trace   *traceCmd   `arg:"subcommand:trace" help:"show a document's last ingestion trace"`

	Config string `arg:"--config,-c" default:"quill.yaml" help:"path to the config file"`
}

func (args) Version() string {
	return fmt.Sprintf("%s %s", ProgramName, Version)
}

func (args) Epilogue() string {
	return fmt.Sprintf("For more information visit %s", RepositoryUrl)
}

func main() {
	var args args

	p, err := arg.NewParser(arg.Config{Program: strings.ToLower(ProgramName)}, &args)
	if err != nil {
		log.Fatalf("there was an error in the definition of the Go struct: %v", err)
	}
	p.MustParse(os.Args[1:])

	if p.Subcommand() == nil {
		p.WriteUsage(os.Stdout)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	cfg, err := config.ReadConfig(args.Config)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to read config", "path", args.Config, "err", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	switch {
	case args.Ingest != nil:
		err = runIngest(cfg, args.Ingest)
	case args.Worker != nil:
		err = worker.New(cfg).Start()
	case args.Enqueue != nil:
		err = runEnqueue(cfg, args.Enqueue)
	case args.Trace != nil:
		err = runTrace(cfg, args.Trace)
	default:
		p.FailSubcommand("unrecognized command", p.SubcommandNames()...)
	}

	if err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func runIngest(cfg *config.Config, cmd *ingestCmd) error {
	ctx := context.Background()

	files, err := resolveFiles(ctx, cfg, cmd.Source, cmd.File)
	if err != nil {
		return err
	}

	runner, cleanup, err := worker.BuildRunner(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	results := runner.Run(ctx, files)

	var failed int
	for _, res := range results {
		if res.Status == pipeline.StatusFailed {
			failed++
			fmt.Printf("FAIL  %s  stage=%s  err=%v\n", res.SourceFile, res.Stage, res.Err)
			continue
		}
		fmt.Printf("OK    %s  chunks=%d  figures=%d\n", res.SourceFile, res.ChunkCount, res.FigureCount)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func runEnqueue(cfg *config.Config, cmd *enqueueCmd) error {
	ctx := context.Background()

	scfg, ok := cfg.Sources[cmd.Source]
	if !ok {
		return fmt.Errorf("unknown source '%s'", cmd.Source)
	}

	names := []string{cmd.File}
	if cmd.File == "" {
		src, err := source.NewSource(ctx, scfg)
		if err != nil {
			return err
		}
		if names, err = src.List(ctx); err != nil {
			return err
		}
	}

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Transport.Addr,
		Username: cfg.Transport.Username,
		Password: cfg.Transport.Password,
		DB:       cfg.Transport.DB,
	})
	defer client.Close()

	for _, name := range names {
		task, err := tasks.NewIngestTask(cmd.Source, name)
		if err != nil {
			return err
		}
		info, err := client.Enqueue(task, asynq.MaxRetry(5), asynq.Timeout(10*time.Minute))
		if err != nil {
			return fmt.Errorf("failed to enqueue '%s': %w", name, err)
		}
		slog.Info("queued document", "file", name, "task", info.ID)
	}
	return nil
}

func runTrace(cfg *config.Config, cmd *traceCmd) error {
	ctx := context.Background()

	docID := cmd.Doc
	if _, err := uuid.Parse(docID); err != nil {
		docID = pipeline.DocumentID(cmd.Doc)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Transport.Addr,
		Username: cfg.Transport.Username,
		Password: cfg.Transport.Password,
		DB:       cfg.Transport.DB,
	})
	defer rdb.Close()

	trace, err := transport.NewRedisTransport(rdb).GetTrace(ctx, docID)
	if err != nil {
		return err
	}

	fmt.Printf("doc:        %s\n", trace.ID)
	fmt.Printf("file:       %s\n", trace.SourceFile)
	fmt.Printf("status:     %s\n", traceStatusName(trace.Status))
	if trace.Stage != "" {
		fmt.Printf("stage:      %s\n", trace.Stage)
	}
	fmt.Printf("chunks:     %d\n", trace.ChunkCount)
	fmt.Printf("figures:    %d\n", trace.FigureCount)
	fmt.Printf("started:    %s\n", time.Unix(trace.StartedAt, 0).Format(time.RFC3339))
	if trace.CompletedAt > 0 {
		fmt.Printf("completed:  %s\n", time.Unix(trace.CompletedAt, 0).Format(time.RFC3339))
	}
	if trace.FailReason != "" {
		fmt.Printf("reason:     %s\n", trace.FailReason)
		fmt.Printf("reingest:   %t\n", trace.NeedsReingest)
	}
	return nil
}

func resolveFiles(ctx context.Context, cfg *config.Config, sourceName string, file string) ([]api.SourceFile, error) {
	scfg, ok := cfg.Sources[sourceName]
	if !ok {
		return nil, fmt.Errorf("unknown source '%s'", sourceName)
	}

	src, err := source.NewSource(ctx, scfg)
	if err != nil {
		return nil, err
	}

	names := []string{file}
	if file == "" {
		if names, err = src.List(ctx); err != nil {
			return nil, err
		}
	}

	files := make([]api.SourceFile, 0, len(names))
	for _, name := range names {
		f, err := src.Fetch(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch '%s': %w", name, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func traceStatusName(status int) string {
	switch status {
	case transport.TraceStatusRunning:
		return "running"
	case transport.TraceStatusCompleted:
		return "completed"
	case transport.TraceStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
