package metrics

import (
	"context"
	"time"

	"github.com/0xcro3dile/snapsolve/internal/domain/ports"
)

// Stage labels for model metrics.
const (
	StageVision = "vision"
	StageSolve  = "solve"
)

// InstrumentedModel wraps a ModelClient and records latency per call.
type InstrumentedModel struct {
	next        ports.ModelClient
	metrics     *Metrics
	visionModel string
	codingModel string
}

// InstrumentModel decorates next with request metrics.
func InstrumentModel(next ports.ModelClient, m *Metrics, visionModel, codingModel string) *InstrumentedModel {
	return &InstrumentedModel{
		next:        next,
		metrics:     m,
		visionModel: visionModel,
		codingModel: codingModel,
	}
}

func (i *InstrumentedModel) AnalyzeImage(ctx context.Context, base64Image string) (string, error) {
	start := time.Now()
	out, err := i.next.AnalyzeImage(ctx, base64Image)
	i.metrics.RecordModelRequest(i.visionModel, StageVision, err == nil, time.Since(start))
	return out, err
}

func (i *InstrumentedModel) Solve(ctx context.Context, problem string) (string, error) {
	start := time.Now()
	out, err := i.next.Solve(ctx, problem)
	i.metrics.RecordModelRequest(i.codingModel, StageSolve, err == nil, time.Since(start))
	return out, err
}
