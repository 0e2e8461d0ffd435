// Package usecases contains application business rules.
// Usecases orchestrate entities through port interfaces and carry no framework code.
package usecases

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	"github.com/0xcro3dile/snapsolve/internal/domain/ports"
)

// DefaultInterval is the pause between capture cycles.
const DefaultInterval = 30 * time.Second

// CycleReport describes one finished capture cycle.
type CycleReport struct {
	Entry    entities.Entry
	Err      error
	Started  time.Time
	Duration time.Duration
}

// CaptureLoop runs capture → analyze → store cycles on a fixed interval.
// Cycles are strictly serial; a failed cycle writes nothing.
type CaptureLoop struct {
	capturer ports.ScreenCapturer
	images   ports.ImageReader
	model    ports.ModelClient
	store    ports.EntryStore
	clock    ports.Clock
	interval time.Duration
	mode     entities.Mode

	visionModel string
	codingModel string
	observer    func(CycleReport)
}

// LoopOption customizes a CaptureLoop.
type LoopOption func(*CaptureLoop)

// WithModelNames records which models produced each entry.
func WithModelNames(vision, coding string) LoopOption {
	return func(l *CaptureLoop) {
		l.visionModel = vision
		l.codingModel = coding
	}
}

// WithObserver registers a callback invoked after every cycle.
func WithObserver(fn func(CycleReport)) LoopOption {
	return func(l *CaptureLoop) { l.observer = fn }
}

// NewCaptureLoop creates a CaptureLoop with injected dependencies.
func NewCaptureLoop(
	capturer ports.ScreenCapturer,
	images ports.ImageReader,
	model ports.ModelClient,
	store ports.EntryStore,
	clock ports.Clock,
	interval time.Duration,
	mode entities.Mode,
	opts ...LoopOption,
) *CaptureLoop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if !mode.Valid() {
		mode = entities.ModeSingle
	}
	l := &CaptureLoop{
		capturer: capturer,
		images:   images,
		model:    model,
		store:    store,
		clock:    clock,
		interval: interval,
		mode:     mode,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the wait between cycles.
func (l *CaptureLoop) Interval() time.Duration { return l.interval }

// Run repeats cycles until ctx is cancelled. Cycle errors are logged and
// never stop the loop; the wait after a failed cycle is the same as after
// a successful one.
func (l *CaptureLoop) Run(ctx context.Context) error {
	log.Printf("[INFO] Starting screenshot capture every %s (%s mode)", l.interval, l.mode)
	for {
		if _, err := l.RunCycle(ctx); err != nil {
			log.Printf("[ERROR] capture cycle failed: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Printf("[INFO] Capture loop stopped")
			return ctx.Err()
		case <-l.clock.After(l.interval):
		}
	}
}

// RunCycle performs a single capture → analyze → store pass.
func (l *CaptureLoop) RunCycle(ctx context.Context) (entities.Entry, error) {
	started := l.clock.Now()
	entry, err := l.cycle(ctx)
	if l.observer != nil {
		l.observer(CycleReport{
			Entry:    entry,
			Err:      err,
			Started:  started,
			Duration: l.clock.Now().Sub(started),
		})
	}
	return entry, err
}

func (l *CaptureLoop) cycle(ctx context.Context) (entities.Entry, error) {
	// 1. Capture
	filename, err := l.capturer.Capture(ctx)
	if err != nil {
		return entities.Entry{}, fmt.Errorf("capturing screenshot: %w", err)
	}
	log.Printf("[INFO] Captured: %s", filename)

	// 2. Encode
	img, err := l.images.ReadImage(filename)
	if err != nil {
		return entities.Entry{}, fmt.Errorf("reading %s: %w", filename, err)
	}
	encoded := base64.StdEncoding.EncodeToString(img)

	// 3. Ask the model(s)
	result, err := l.analyze(ctx, encoded)
	if err != nil {
		return entities.Entry{}, err
	}

	// 4. Store
	entry := entities.Entry{
		Timestamp:          l.clock.Now().UnixMilli(),
		Screenshot:         filename,
		Mode:               result.Mode,
		Response:           result.Response,
		ProblemDescription: result.ProblemDescription,
		Solution:           result.Solution,
		VisionModel:        l.visionModel,
	}
	if result.Mode == entities.ModeTwoStage {
		entry.CodingModel = l.codingModel
	}
	if err := l.store.Append(ctx, entry); err != nil {
		return entities.Entry{}, fmt.Errorf("storing entry: %w", err)
	}

	log.Printf("[OK] Stored entry %d for %s", entry.Timestamp, filename)
	return entry, nil
}

func (l *CaptureLoop) analyze(ctx context.Context, encoded string) (entities.AnalysisResult, error) {
	text, err := l.model.AnalyzeImage(ctx, encoded)
	if err != nil {
		return entities.AnalysisResult{}, fmt.Errorf("analyzing image: %w", err)
	}
	log.Printf("[DEBUG] Vision response: %d chars", len(text))

	if l.mode != entities.ModeTwoStage {
		return entities.AnalysisResult{Mode: entities.ModeSingle, Response: text}, nil
	}

	solution, err := l.model.Solve(ctx, text)
	if err != nil {
		return entities.AnalysisResult{}, fmt.Errorf("solving problem: %w", err)
	}
	log.Printf("[DEBUG] Solution response: %d chars", len(solution))

	return entities.AnalysisResult{
		Mode:               entities.ModeTwoStage,
		ProblemDescription: text,
		Solution:           solution,
	}, nil
}
