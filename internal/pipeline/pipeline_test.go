package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/observation-gapfill/internal/domain"
	"github.com/couchcryptid/observation-gapfill/internal/observability"
	"github.com/couchcryptid/observation-gapfill/internal/pipeline"
)

const gappyDocument = `{"type":"FeatureCollection","features":[
	{"type":"Feature","geometry":{"type":"Point","coordinates":[-97.74,30.27]},"properties":{"observed":"2024-01-01T00:00:00Z","value":5.0}},
	{"type":"Feature","geometry":{"type":"Point","coordinates":[-97.74,30.27]},"properties":{"observed":"2024-01-01T03:00:00Z","value":8.0}}
]}`

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawMessage
	index   atomic.Int64
	err     error
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputMessage
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, msgs []domain.OutputMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, msgs...)
	return nil
}

func (m *mockLoader) snapshot() []domain.OutputMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutputMessage(nil), m.loaded...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	committed := false
	raw := domain.RawMessage{
		Key:    []byte("station-42"),
		Value:  []byte(gappyDocument),
		Commit: func(context.Context) error { committed = true; return nil },
	}

	metrics := observability.NewMetricsForTesting()
	ext := &mockExtractor{batches: [][]domain.RawMessage{{raw}}}
	ldr := &mockLoader{}
	filler := pipeline.NewGapFiller(0, discardLogger(), metrics)

	p := pipeline.New(ext, filler, ldr, discardLogger(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	loaded := ldr.snapshot()
	require.Len(t, loaded, 1)
	assert.Equal(t, []byte("station-42"), loaded[0].Key)
	assert.Equal(t, "2", loaded[0].Headers[pipeline.HeaderSynthesizedCount])
	assert.True(t, committed)
	require.NoError(t, p.CheckReadiness(context.Background()))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DocumentsConsumed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DocumentsProduced), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ObservationsSynthesized), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, pipeline.NewGapFiller(0, discardLogger(), nil), ldr, discardLogger(), metrics, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.snapshot())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_SkipsMalformedDocuments(t *testing.T) {
	var commits atomic.Int32
	commit := func(context.Context) error { commits.Add(1); return nil }

	batch := []domain.RawMessage{
		{Key: []byte("bad-json"), Value: []byte("not-json{{{"), Commit: commit},
		{Key: []byte("bad-time"), Value: []byte(`{"features":[{"properties":{"observed":"noon","value":1}}]}`), Commit: commit},
		{Key: []byte("duplicate"), Value: []byte(`{"features":[
			{"properties":{"observed":"2024-01-01T00:00:00Z","value":1}},
			{"properties":{"observed":"2024-01-01T00:00:00Z","value":1}}]}`), Commit: commit},
		{Key: []byte("good"), Value: []byte(gappyDocument), Commit: commit},
	}

	metrics := observability.NewMetricsForTesting()
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{batches: [][]domain.RawMessage{batch}},
		pipeline.NewGapFiller(0, discardLogger(), metrics), ldr, discardLogger(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	loaded := ldr.snapshot()
	require.Len(t, loaded, 1)
	assert.Equal(t, []byte("good"), loaded[0].Key)
	assert.Equal(t, int32(4), commits.Load(), "poison pills are committed too")
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.FillErrors), 0)
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	committed := false
	raw := domain.RawMessage{
		Value:  []byte(gappyDocument),
		Commit: func(context.Context) error { committed = true; return nil },
	}

	ldr := &mockLoader{err: errors.New("broker unavailable")}
	p := pipeline.New(&mockExtractor{batches: [][]domain.RawMessage{{raw}}},
		pipeline.NewGapFiller(0, discardLogger(), nil), ldr, discardLogger(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 300*time.Millisecond)

	assert.False(t, committed)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ExtractErrorBacksOff(t *testing.T) {
	ext := &mockExtractor{err: errors.New("fetch failed")}
	p := pipeline.New(ext, pipeline.NewGapFiller(0, discardLogger(), nil), &mockLoader{},
		discardLogger(), observability.NewMetricsForTesting(), 10)

	start := time.Now()
	runFor(t, p, 100*time.Millisecond)
	assert.Less(t, time.Since(start), time.Second, "backoff must honour cancellation")
}

func TestGapFiller_Transform(t *testing.T) {
	fixed := time.Date(2024, 4, 27, 6, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	filler := pipeline.NewGapFiller(0, discardLogger(), nil)
	out, err := filler.Transform(context.Background(), domain.RawMessage{Key: []byte("k"), Value: []byte(gappyDocument)})
	require.NoError(t, err)

	assert.Equal(t, []byte("k"), out.Key)
	assert.Equal(t, map[string]string{
		pipeline.HeaderSynthesizedCount: "2",
		pipeline.HeaderFilledAt:         "2024-04-27T06:00:00Z",
		pipeline.HeaderContentType:      "application/geo+json",
	}, out.Headers)

	var doc struct {
		Features []struct {
			Properties struct {
				Observed string  `json:"observed"`
				Value    float64 `json:"value"`
			} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(out.Value, &doc))
	require.Len(t, doc.Features, 4)
	assert.Equal(t, "2024-01-01T02:00:00Z", doc.Features[2].Properties.Observed)
	assert.InDelta(t, 5.0, doc.Features[2].Properties.Value, 1e-9)
}

func TestGapFiller_MaxPasses(t *testing.T) {
	filler := pipeline.NewGapFiller(2, discardLogger(), nil)
	_, _, err := filler.FillBytes(context.Background(), []byte(gappyDocument))
	require.ErrorIs(t, err, domain.ErrNoConvergence)
}

func TestGapFiller_Idempotent(t *testing.T) {
	filler := pipeline.NewGapFiller(0, discardLogger(), nil)
	once, first, err := filler.FillBytes(context.Background(), []byte(gappyDocument))
	require.NoError(t, err)
	require.Len(t, first.Synthesized, 2)

	twice, second, err := filler.FillBytes(context.Background(), once)
	require.NoError(t, err)
	assert.Empty(t, second.Synthesized)
	assert.JSONEq(t, string(once), string(twice))
}
