// Package domain models hourly weather observations stored as a GeoJSON
// feature collection and repairs gaps in their time series.
//
// # Data Shape
//
// A document is a JSON object with a "features" array. Each feature carries a
// "properties" object with at least:
//
//	"observed": "2024-01-01T00:00:00Z"   UTC, whole seconds, literal Z
//	"value":    5.0                      numeric measurement
//
// Everything else (geometry, station identifiers, units, top-level fields) is
// opaque and round-trips unchanged.
//
// # Filling
//
// [Fill] runs a fixed-point loop. Each pass stable-sorts the observations by
// parsed time and looks for the first adjacent pair whose step is not exactly
// one hour. The predecessor of that pair is cloned, its timestamp set to the
// next expected hour, and appended; then the pass restarts. A gap of N missing
// hours therefore takes N passes. The loop ends on the first pass that finds
// no mismatch.
//
// Synthesized observations copy the predecessor's value verbatim. They are not
// tagged and are indistinguishable from measured ones once written.
//
// A duplicate or off-grid timestamp can never be resolved this way: the new
// hour always sorts after the offending record. Fill bounds the number of
// passes and returns [ErrNoConvergence] instead of looping forever.
package domain
