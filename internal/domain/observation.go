package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"
)

const (
	propertiesKey = "properties"
	observedKey   = "observed"
	valueKey      = "value"
)

// Observation is one feature of the collection. Observed and Value are parsed
// from its properties; every other field is held as raw JSON.
type Observation struct {
	Observed time.Time
	Value    float64

	// attributes holds the feature's fields other than "properties".
	attributes map[string]json.RawMessage
	// properties holds the feature's properties, "value" included verbatim.
	// "observed" is regenerated from Observed on output.
	properties map[string]json.RawMessage
}

// NewObservation builds a Feature without geometry for the given time and value.
func NewObservation(observed time.Time, value float64) Observation {
	return Observation{
		Observed:   observed.UTC(),
		Value:      value,
		attributes: map[string]json.RawMessage{"type": json.RawMessage(`"Feature"`)},
		properties: map[string]json.RawMessage{valueKey: json.RawMessage(strconv.FormatFloat(value, 'f', -1, 64))},
	}
}

// Clone returns a deep copy. Mutating the copy never affects o.
func (o Observation) Clone() Observation {
	return Observation{
		Observed:   o.Observed,
		Value:      o.Value,
		attributes: cloneRaw(o.attributes),
		properties: cloneRaw(o.properties),
	}
}

// Attribute returns a feature-level field such as "geometry".
func (o Observation) Attribute(key string) (json.RawMessage, bool) {
	v, ok := o.attributes[key]
	return v, ok
}

// SetAttribute marshals v into the feature-level field key.
func (o *Observation) SetAttribute(key string, v any) error {
	if key == propertiesKey {
		return fmt.Errorf("set attribute: %q is reserved", key)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("set attribute %q: %w", key, err)
	}
	if o.attributes == nil {
		o.attributes = make(map[string]json.RawMessage)
	}
	o.attributes[key] = data
	return nil
}

// Property returns a raw property. "observed" reflects the current Observed.
func (o Observation) Property(key string) (json.RawMessage, bool) {
	if key == observedKey {
		return json.RawMessage(strconv.Quote(FormatTimestamp(o.Observed))), true
	}
	v, ok := o.properties[key]
	return v, ok
}

// SetProperty marshals v into properties[key]. observed and value are owned
// by the typed fields and cannot be set here.
func (o *Observation) SetProperty(key string, v any) error {
	if key == observedKey || key == valueKey {
		return fmt.Errorf("set property: %q is reserved", key)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("set property %q: %w", key, err)
	}
	if o.properties == nil {
		o.properties = make(map[string]json.RawMessage)
	}
	o.properties[key] = data
	return nil
}

// MarshalJSON writes the feature back with observed in TimestampLayout.
func (o Observation) MarshalJSON() ([]byte, error) {
	props := make(map[string]json.RawMessage, len(o.properties)+1)
	maps.Copy(props, o.properties)
	props[observedKey] = json.RawMessage(strconv.Quote(FormatTimestamp(o.Observed)))
	if _, ok := props[valueKey]; !ok {
		props[valueKey] = json.RawMessage(strconv.FormatFloat(o.Value, 'f', -1, 64))
	}
	propsData, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("marshal properties: %w", err)
	}

	feature := make(map[string]json.RawMessage, len(o.attributes)+1)
	maps.Copy(feature, o.attributes)
	feature[propertiesKey] = propsData
	return json.Marshal(feature)
}

// parseObservation decodes feature i of a document.
func parseObservation(i int, data json.RawMessage) (Observation, error) {
	var feature map[string]json.RawMessage
	if err := json.Unmarshal(data, &feature); err != nil || feature == nil {
		return Observation{}, fmt.Errorf("%w: feature %d is not an object", ErrMalformedDocument, i)
	}

	rawProps, ok := feature[propertiesKey]
	if !ok || isNull(rawProps) {
		return Observation{}, fmt.Errorf("%w: feature %d has no properties", ErrMalformedDocument, i)
	}
	var props map[string]json.RawMessage
	if err := json.Unmarshal(rawProps, &props); err != nil {
		return Observation{}, fmt.Errorf("%w: feature %d properties is not an object", ErrMalformedDocument, i)
	}

	rawObserved, ok := props[observedKey]
	if !ok || isNull(rawObserved) {
		return Observation{}, fmt.Errorf("%w: feature %d has no observed", ErrMalformedDocument, i)
	}
	var observedStr string
	if err := json.Unmarshal(rawObserved, &observedStr); err != nil {
		return Observation{}, fmt.Errorf("%w: feature %d observed is not a string", ErrMalformedDocument, i)
	}
	observed, err := ParseTimestamp(observedStr)
	if err != nil {
		var te *TimestampError
		if errors.As(err, &te) {
			te.Index = i
		}
		return Observation{}, err
	}

	rawValue, ok := props[valueKey]
	if !ok || isNull(rawValue) {
		return Observation{}, fmt.Errorf("%w: feature %d has no value", ErrMalformedDocument, i)
	}
	var value float64
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return Observation{}, fmt.Errorf("%w: feature %d value is not a number", ErrMalformedDocument, i)
	}

	delete(feature, propertiesKey)
	delete(props, observedKey)

	return Observation{
		Observed:   observed,
		Value:      value,
		attributes: feature,
		properties: props,
	}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = bytes.Clone(v)
	}
	return out
}
