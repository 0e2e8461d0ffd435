package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/0xcro3dile/snapsolve/internal/adapters/capture"
	"github.com/0xcro3dile/snapsolve/internal/adapters/clock"
	"github.com/0xcro3dile/snapsolve/internal/adapters/filewatcher"
	"github.com/0xcro3dile/snapsolve/internal/adapters/llm"
	"github.com/0xcro3dile/snapsolve/internal/adapters/storage"
	"github.com/0xcro3dile/snapsolve/internal/config"
	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	"github.com/0xcro3dile/snapsolve/internal/domain/ports"
	"github.com/0xcro3dile/snapsolve/internal/domain/usecases"
	httpserver "github.com/0xcro3dile/snapsolve/internal/infrastructure/http"
	"github.com/0xcro3dile/snapsolve/internal/metrics"
)

// overrides are the command-line values that take precedence over the file.
type overrides struct {
	interval time.Duration
	mode     string
	listen   string
}

func loadConfig(path string, o overrides) (*config.Config, error) {
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, err
	}
	if o.interval > 0 {
		cfg.Interval = o.interval
	}
	if o.mode != "" {
		cfg.Mode = entities.Mode(o.mode)
	}
	if o.listen != "" {
		cfg.Listen = o.listen
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (ports.EntryStore, error) {
	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return store, nil
}

func newModelClient(cfg *config.Config) *llm.OllamaClient {
	return llm.NewOllamaClient(
		cfg.Ollama.EndpointURL,
		cfg.Ollama.VisionModel,
		cfg.Ollama.CodingModel,
		llm.WithTimeout(cfg.Ollama.Timeout),
		llm.WithTwoStage(cfg.Mode == entities.ModeTwoStage),
		llm.WithPrompts(llm.Prompts{
			Single: cfg.Prompts.Single,
			Vision: cfg.Prompts.Vision,
			Solve:  cfg.Prompts.Solve,
		}),
	)
}

type capturer interface {
	ports.ScreenCapturer
	ports.ImageReader
}

func newCapturer(cfg *config.Config) (capturer, error) {
	dir := capture.NewImageDir(cfg.ImagesPath)
	if err := dir.Init(); err != nil {
		return nil, err
	}
	if len(cfg.Capture.Command) > 0 {
		c, err := capture.NewCommandCapturer(dir, cfg.Capture.Command)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if n := activeDisplays(); n > 0 && cfg.Capture.Display >= n {
		log.Printf("[WARN] capture.display %d out of range (have %d); captures will fail", cfg.Capture.Display, n)
	}
	return capture.NewDisplayCapturer(dir, cfg.Capture.Display), nil
}

var activeDisplays = capture.Displays

// checkModels warns about configured models that are not pulled. It never
// fails: the loop keeps running and logs each failed cycle.
func checkModels(ctx context.Context, client *llm.OllamaClient) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	missing, err := client.MissingModels(ctx)
	if err != nil {
		log.Printf("[WARN] could not check Ollama models: %v", err)
		return
	}
	for _, name := range missing {
		log.Printf("[WARN] %s is not pulled; run: ollama pull %s", name, name)
	}
}

// newLoop wires the capture loop. m may be nil.
func newLoop(cfg *config.Config, store ports.EntryStore, m *metrics.Metrics) (*usecases.CaptureLoop, error) {
	c, err := newCapturer(cfg)
	if err != nil {
		return nil, err
	}

	client := newModelClient(cfg)
	var model ports.ModelClient = client
	opts := []usecases.LoopOption{
		usecases.WithModelNames(client.VisionModel(), client.CodingModel()),
	}
	if m != nil {
		model = metrics.InstrumentModel(client, m, client.VisionModel(), client.CodingModel())
		opts = append(opts, usecases.WithObserver(m.ObserveCycle))
	}

	return usecases.NewCaptureLoop(c, c, model, store, clock.New(), cfg.Interval, cfg.Mode, opts...), nil
}

// newServer wires the query server, live refresh included when the store
// has a file to watch. The returned stop func releases the watcher.
func newServer(ctx context.Context, cfg *config.Config, store ports.EntryStore, m *metrics.Metrics) (*httpserver.Server, func()) {
	opts := []httpserver.ServerOption{httpserver.WithMetrics(m)}
	stop := func() {}

	if path := store.Path(); path != "" {
		watcher, events, err := filewatcher.ForDocument(ctx, path)
		if err != nil {
			log.Printf("[WARN] live refresh disabled: %v", err)
		} else {
			opts = append(opts, httpserver.WithChanges(events))
			stop = func() { watcher.Stop() }
		}
	}

	srv := httpserver.NewServer(usecases.NewEntriesUseCase(store), cfg.ImagesPath, cfg.Listen, opts...)
	return srv, stop
}
