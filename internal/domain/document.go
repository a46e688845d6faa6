package domain

import (
	"encoding/json"
	"fmt"
	"maps"
)

const featuresKey = "features"

// Document is a feature collection whose features are Observations.
type Document struct {
	Features []Observation

	// fields holds the top-level members other than "features".
	fields map[string]json.RawMessage
}

// NewDocument wraps observations in a FeatureCollection.
func NewDocument(features []Observation) *Document {
	return &Document{
		Features: features,
		fields:   map[string]json.RawMessage{"type": json.RawMessage(`"FeatureCollection"`)},
	}
}

// ParseDocument decodes a feature collection. Any malformed feature aborts the
// whole parse.
func ParseDocument(data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformedDocument)
	}

	rawFeatures, ok := fields[featuresKey]
	if !ok || isNull(rawFeatures) {
		return nil, fmt.Errorf("%w: missing features", ErrMalformedDocument)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawFeatures, &items); err != nil {
		return nil, fmt.Errorf("%w: features is not an array", ErrMalformedDocument)
	}

	features := make([]Observation, 0, len(items))
	for i, item := range items {
		obs, err := parseObservation(i, item)
		if err != nil {
			return nil, err
		}
		features = append(features, obs)
	}

	delete(fields, featuresKey)
	return &Document{Features: features, fields: fields}, nil
}

// Fill repairs the document's features in place. maxPasses <= 0 uses the
// budget derived from the input. On error the document is left unchanged.
func (d *Document) Fill(maxPasses int) (FillResult, error) {
	result, err := FillWithLimit(d.Features, maxPasses)
	if err != nil {
		return FillResult{}, err
	}
	d.Features = result.Observations
	return result, nil
}

// MarshalJSON writes the top-level fields back with features in their
// current order.
func (d *Document) MarshalJSON() ([]byte, error) {
	features := d.Features
	if features == nil {
		features = []Observation{}
	}
	featuresData, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}
	out := make(map[string]json.RawMessage, len(d.fields)+1)
	maps.Copy(out, d.fields)
	out[featuresKey] = featuresData
	return json.Marshal(out)
}
