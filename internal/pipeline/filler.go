package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/observation-gapfill/internal/domain"
	"github.com/couchcryptid/observation-gapfill/internal/observability"
)

// Output message header keys.
const (
	HeaderSynthesizedCount = "synthesized_count"
	HeaderFilledAt         = "filled_at"
	HeaderContentType      = "content_type"
)

// GapFiller implements Transformer by filling each message's feature collection.
type GapFiller struct {
	maxPasses int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewGapFiller creates a GapFiller. maxPasses <= 0 derives the pass budget
// per document. metrics may be nil.
func NewGapFiller(maxPasses int, logger *slog.Logger, metrics *observability.Metrics) *GapFiller {
	return &GapFiller{
		maxPasses: maxPasses,
		logger:    logger,
		metrics:   metrics,
	}
}

// FillBytes parses, fills, and re-serializes one document.
func (f *GapFiller) FillBytes(_ context.Context, data []byte) ([]byte, domain.FillResult, error) {
	doc, err := domain.ParseDocument(data)
	if err != nil {
		return nil, domain.FillResult{}, err
	}

	result, err := doc.Fill(f.maxPasses)
	if err != nil {
		return nil, domain.FillResult{}, err
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, domain.FillResult{}, fmt.Errorf("serialize filled document: %w", err)
	}

	if f.metrics != nil {
		f.metrics.ObservationsSynthesized.Add(float64(len(result.Synthesized)))
		f.metrics.FillPasses.Observe(float64(result.Passes))
	}
	f.logger.Debug("document filled",
		"observations", len(result.Observations),
		"synthesized", len(result.Synthesized),
		"passes", result.Passes,
	)
	return out, result, nil
}

func (f *GapFiller) Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	out, result, err := f.FillBytes(ctx, raw.Value)
	if err != nil {
		return domain.OutputMessage{}, err
	}
	return domain.OutputMessage{
		Key:   raw.Key,
		Value: out,
		Headers: map[string]string{
			HeaderSynthesizedCount: strconv.Itoa(len(result.Synthesized)),
			HeaderFilledAt:         result.FilledAt.UTC().Format(time.RFC3339),
			HeaderContentType:      "application/geo+json",
		},
	}, nil
}
