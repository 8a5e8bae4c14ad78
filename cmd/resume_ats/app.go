package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ats/internal/archive"
	"github.com/jonathan/resume-ats/internal/config"
	"github.com/jonathan/resume-ats/internal/db"
	"github.com/jonathan/resume-ats/internal/events"
	"github.com/jonathan/resume-ats/internal/llm"
	"github.com/jonathan/resume-ats/internal/logger"
	"github.com/jonathan/resume-ats/internal/observability"
	"github.com/jonathan/resume-ats/internal/pipeline"
)

// app carries what every command needs once configuration is loaded
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	printer *observability.Printer
	out     io.Writer
	errOut  io.Writer
	closers []func()

	progressMu sync.Mutex
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &app{
		cfg:     cfg,
		log:     log,
		printer: observability.NewPrinter(cmd.OutOrStdout()),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

// close releases resources in reverse order of acquisition
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.log.Sync()
}

func (a *app) oracle(ctx context.Context) (llm.Client, error) {
	if err := a.cfg.RequireOracle(); err != nil {
		return nil, err
	}
	llmCfg := a.cfg.LLMConfig()
	client, err := llm.NewClient(ctx, llmCfg, a.cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.log.Debug("LLM client ready", logger.OracleFields(string(llmCfg.Provider), llmCfg.GetModel(llm.TierStandard))...)
	a.closers = append(a.closers, func() { _ = client.Close() })
	return client, nil
}

// pipelineOptions reports every stage and, when a broker is configured, publishes stage events.
// Console runs get one progress line per stage; JSON or debug runs get structured logs instead.
// A broker that cannot be reached only disables publishing.
func (a *app) pipelineOptions() pipeline.Options {
	var observers []pipeline.Observer
	if a.cfg.Log.JSON || a.cfg.Log.Debug {
		observers = append(observers, pipeline.LogObserver(a.log))
	} else {
		observers = append(observers, pipeline.ProgressObserver(a.progress))
	}
	if a.cfg.Events.Enabled() {
		pub, err := events.Dial(a.cfg.Events.URL, a.cfg.Events.Exchange, a.log)
		if err != nil {
			a.log.Warn("stage events disabled", zap.Error(err))
		} else {
			observers = append(observers, pub.Observer())
			a.closers = append(a.closers, func() { _ = pub.Close() })
		}
	}
	return a.cfg.PipelineOptions(pipeline.Observers(observers...))
}

func (a *app) progress(event pipeline.ProgressEvent) {
	a.progressMu.Lock()
	defer a.progressMu.Unlock()
	fmt.Fprintf(a.errOut, "  [%s] %s\n", event.Category, event.Message)
}

func (a *app) database(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is not configured (set %s_DATABASE_URL or DATABASE_URL)", config.EnvPrefix)
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, database.Close)
	return database, nil
}

// archive returns nil when no bucket is configured
func (a *app) archive(ctx context.Context) (*archive.Store, error) {
	if !a.cfg.Archive.Enabled() {
		return nil, nil
	}
	return archive.New(ctx, archive.Options{
		Bucket:    a.cfg.Archive.Bucket,
		Prefix:    a.cfg.Archive.Prefix,
		Endpoint:  a.cfg.Archive.Endpoint,
		Region:    a.cfg.Archive.Region,
		AccessKey: a.cfg.Archive.AccessKey,
		SecretKey: a.cfg.Archive.SecretKey,
	})
}

// writeJSON writes v as indented JSON to path, or to w when path is empty
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	return writeFile(path, data)
}

func readJSON[T any](path string) (*T, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var out T
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return &out, nil
}
