package usecases

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// mockCapturer implements ports.ScreenCapturer and ports.ImageReader for testing
type mockCapturer struct {
	calls     int
	captureFn func(n int) (string, error)
	images    map[string][]byte
}

func (m *mockCapturer) Capture(ctx context.Context) (string, error) {
	m.calls++
	if m.captureFn != nil {
		return m.captureFn(m.calls)
	}
	name := fmt.Sprintf("screenshot-%d.png", m.calls)
	if m.images == nil {
		m.images = make(map[string][]byte)
	}
	m.images[name] = []byte("png-bytes")
	return name, nil
}

func (m *mockCapturer) ReadImage(filename string) ([]byte, error) {
	data, ok := m.images[filename]
	if !ok {
		return nil, &entities.CaptureError{Op: "read", Err: errors.New("no such image")}
	}
	return data, nil
}

// mockModel implements ports.ModelClient for testing
type mockModel struct {
	analyzeFn  func(img string) (string, error)
	solveFn    func(problem string) (string, error)
	lastImage  string
	lastSolved string
	solveCalls int
}

func (m *mockModel) AnalyzeImage(ctx context.Context, base64Image string) (string, error) {
	m.lastImage = base64Image
	if m.analyzeFn != nil {
		return m.analyzeFn(base64Image)
	}
	return "described problem", nil
}

func (m *mockModel) Solve(ctx context.Context, problem string) (string, error) {
	m.solveCalls++
	m.lastSolved = problem
	if m.solveFn != nil {
		return m.solveFn(problem)
	}
	return "the solution", nil
}

// mockStore implements ports.EntryStore for testing
type mockStore struct {
	mu       sync.Mutex
	entries  []entities.Entry
	appendFn func(e entities.Entry) error
}

func (m *mockStore) Init(ctx context.Context) error { return nil }

func (m *mockStore) Load(ctx context.Context) ([]entities.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *mockStore) Save(ctx context.Context, entries []entities.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]entities.Entry(nil), entries...)
	return nil
}

func (m *mockStore) Append(ctx context.Context, e entities.Entry) error {
	if m.appendFn != nil {
		if err := m.appendFn(e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockStore) Path() string { return "" }
func (m *mockStore) Close() error { return nil }

func (m *mockStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// fakeClock advances only when the loop waits. After stops the loop by
// cancelling once the configured number of waits has been reached.
type fakeClock struct {
	now      time.Time
	waits    []time.Duration
	maxWaits int
	cancel   context.CancelFunc
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	if len(c.waits) >= c.maxWaits {
		c.cancel()
		return make(chan time.Time)
	}
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func newLoop(shot *mockCapturer, model *mockModel, store *mockStore, clock *fakeClock, mode entities.Mode) *CaptureLoop {
	return NewCaptureLoop(shot, shot, model, store, clock, 30*time.Second, mode, WithModelNames("vision-m", "coder-m"))
}

func TestCaptureLoop_SuccessfulCycleAppendsOne(t *testing.T) {
	shot := &mockCapturer{}
	model := &mockModel{}
	store := &mockStore{entries: []entities.Entry{{Timestamp: 1, Screenshot: "old.png", Mode: entities.ModeSingle}}}
	clock := &fakeClock{now: time.UnixMilli(1700000000000)}
	loop := newLoop(shot, model, store, clock, entities.ModeSingle)

	entry, err := loop.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if store.len() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.len())
	}
	if entry.Timestamp != 1700000000000 {
		t.Errorf("unexpected timestamp %d", entry.Timestamp)
	}
	if entry.Screenshot != "screenshot-1.png" {
		t.Errorf("unexpected screenshot %s", entry.Screenshot)
	}
	if entry.Mode != entities.ModeSingle || entry.Response != "described problem" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.CodingModel != "" {
		t.Error("single mode entry should not record a coding model")
	}
	if model.lastImage != base64.StdEncoding.EncodeToString([]byte("png-bytes")) {
		t.Errorf("image was not base64 encoded: %s", model.lastImage)
	}
	if model.solveCalls != 0 {
		t.Error("single mode should not call Solve")
	}
}

func TestCaptureLoop_TwoStageFeedsVisionOutput(t *testing.T) {
	shot := &mockCapturer{}
	model := &mockModel{
		analyzeFn: func(string) (string, error) { return "reverse a list", nil },
	}
	store := &mockStore{}
	clock := &fakeClock{now: time.UnixMilli(5)}
	loop := newLoop(shot, model, store, clock, entities.ModeTwoStage)

	entry, err := loop.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if model.lastSolved != "reverse a list" {
		t.Errorf("solve got %q", model.lastSolved)
	}
	if entry.Mode != entities.ModeTwoStage {
		t.Errorf("expected two_stage, got %s", entry.Mode)
	}
	if entry.ProblemDescription != "reverse a list" || entry.Solution != "the solution" {
		t.Errorf("unexpected payload %+v", entry)
	}
	if entry.Response != "" {
		t.Error("two-stage entry should not carry a response")
	}
	if entry.VisionModel != "vision-m" || entry.CodingModel != "coder-m" {
		t.Errorf("unexpected models %s/%s", entry.VisionModel, entry.CodingModel)
	}
}

func TestCaptureLoop_FailedCyclesWriteNothing(t *testing.T) {
	tests := []struct {
		name    string
		shot    *mockCapturer
		model   *mockModel
		store   *mockStore
		mode    entities.Mode
		wantErr any
	}{
		{
			name: "capture",
			shot: &mockCapturer{captureFn: func(int) (string, error) {
				return "", &entities.CaptureError{Op: "grab", Err: errors.New("no display")}
			}},
			model:   &mockModel{},
			store:   &mockStore{},
			mode:    entities.ModeSingle,
			wantErr: new(*entities.CaptureError),
		},
		{
			name: "vision",
			shot: &mockCapturer{},
			model: &mockModel{analyzeFn: func(string) (string, error) {
				return "", &entities.UpstreamError{Model: "v", Status: 500}
			}},
			store:   &mockStore{},
			mode:    entities.ModeSingle,
			wantErr: new(*entities.UpstreamError),
		},
		{
			name: "solve",
			shot: &mockCapturer{},
			model: &mockModel{solveFn: func(string) (string, error) {
				return "", &entities.UpstreamError{Model: "c", Status: 404}
			}},
			store:   &mockStore{},
			mode:    entities.ModeTwoStage,
			wantErr: new(*entities.UpstreamError),
		},
		{
			name:  "storage",
			shot:  &mockCapturer{},
			model: &mockModel{},
			store: &mockStore{appendFn: func(entities.Entry) error {
				return &entities.StorageError{Op: "write", Path: "storage.json", Err: errors.New("disk full")}
			}},
			mode:    entities.ModeSingle,
			wantErr: new(*entities.StorageError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.UnixMilli(1)}
			loop := newLoop(tt.shot, tt.model, tt.store, clock, tt.mode)

			_, err := loop.RunCycle(context.Background())
			if err == nil {
				t.Fatal("expected cycle error")
			}
			if !errors.As(err, tt.wantErr) {
				t.Errorf("unexpected error type: %v", err)
			}
			if tt.store.len() != 0 {
				t.Errorf("failed cycle wrote %d entries", tt.store.len())
			}
		})
	}
}

func TestCaptureLoop_RunContinuesAfterFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shot := &mockCapturer{}
	shot.captureFn = func(n int) (string, error) {
		if n%2 == 1 {
			return "", &entities.CaptureError{Op: "grab", Err: errors.New("flaky")}
		}
		name := fmt.Sprintf("screenshot-%d.png", n)
		if shot.images == nil {
			shot.images = make(map[string][]byte)
		}
		shot.images[name] = []byte("img")
		return name, nil
	}
	store := &mockStore{}
	clock := &fakeClock{now: time.UnixMilli(0), maxWaits: 4, cancel: cancel}
	loop := newLoop(shot, &mockModel{}, store, clock, entities.ModeSingle)

	err := loop.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if shot.calls != 4 {
		t.Errorf("expected 4 cycles, got %d", shot.calls)
	}
	if store.len() != 2 {
		t.Errorf("expected 2 stored entries, got %d", store.len())
	}
	for i, d := range clock.waits {
		if d != 30*time.Second {
			t.Errorf("wait %d was %s", i, d)
		}
	}
}

func TestCaptureLoop_ObserverSeesEveryCycle(t *testing.T) {
	var reports []CycleReport
	shot := &mockCapturer{captureFn: func(int) (string, error) {
		return "", &entities.CaptureError{Op: "grab", Err: errors.New("x")}
	}}
	clock := &fakeClock{now: time.UnixMilli(0)}
	loop := NewCaptureLoop(shot, shot, &mockModel{}, &mockStore{}, clock, time.Second, entities.ModeSingle,
		WithObserver(func(r CycleReport) { reports = append(reports, r) }))

	loop.RunCycle(context.Background())
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	if reports[0].Err == nil {
		t.Error("report should carry the cycle error")
	}
}

func TestNewCaptureLoop_Defaults(t *testing.T) {
	loop := NewCaptureLoop(nil, nil, nil, nil, nil, 0, "")
	if loop.Interval() != DefaultInterval {
		t.Errorf("expected default interval, got %s", loop.Interval())
	}
	if loop.mode != entities.ModeSingle {
		t.Errorf("expected single mode default, got %s", loop.mode)
	}
}
