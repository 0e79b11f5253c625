// Package agent defines the three domain pipelines a trip request fans out to,
// the result each one produces, and the structured extractor that turns a
// free-text completion into a JSON payload.
package agent

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a domain pipeline.
type Kind string

const (
	KindItinerary Kind = "itinerary"
	KindCost      Kind = "cost"
	KindCulture   Kind = "culture"
)

// AllKinds lists every pipeline in envelope order.
var AllKinds = []Kind{KindItinerary, KindCost, KindCulture}

type kindInfo struct {
	displayName string
	payloadKey  string
	envelopeKey string
	parseError  string
}

var kinds = map[Kind]kindInfo{
	KindItinerary: {
		displayName: "Itinerary Builder",
		payloadKey:  "itinerary",
		envelopeKey: "itinerary",
		parseError:  "Could not parse itinerary",
	},
	KindCost: {
		displayName: "Cost Estimator",
		payloadKey:  "cost_breakdown",
		envelopeKey: "cost_estimate",
		parseError:  "Could not parse cost estimate",
	},
	KindCulture: {
		displayName: "Local Culture Coach",
		payloadKey:  "cultural_guide",
		envelopeKey: "cultural_guide",
		parseError:  "Could not parse cultural advice",
	},
}

// Valid reports whether k is a known pipeline.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// DisplayName is the human-readable agent name reported in results.
func (k Kind) DisplayName() string { return kinds[k].displayName }

// PayloadKey is the key that holds the payload inside a single Result.
func (k Kind) PayloadKey() string { return kinds[k].payloadKey }

// EnvelopeKey is the key this kind's Result occupies in the "all" envelope.
func (k Kind) EnvelopeKey() string { return kinds[k].envelopeKey }

// ParseErrorMessage is the marker used when no JSON object is found.
func (k Kind) ParseErrorMessage() string { return kinds[k].parseError }

// Fallback returns the error-marker payload for k. Itinerary payloads keep an
// empty day list so consumers can iterate without a nil check.
func (k Kind) Fallback(msg string) map[string]any {
	if k == KindItinerary {
		return map[string]any{"days": []any{}, "error": msg}
	}
	return map[string]any{"error": msg}
}

// Result is what one pipeline produces. Payload is never nil: it holds either
// the extracted object or an error marker.
type Result struct {
	Kind        Kind
	Payload     map[string]any
	RawResponse string
	Outcome     Outcome
	// MemoryError is set when the itinerary record could not be persisted.
	MemoryError string
}

// Failed reports whether the payload is an error marker.
func (r Result) Failed() bool { return r.Outcome != OutcomeOK }

// MarshalJSON writes the wire shape
// {"agent": ..., "<payload key>": {...}, "raw_response": ...}.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Kind.Valid() {
		return nil, fmt.Errorf("marshal result: unknown kind %q", r.Kind)
	}
	payload := r.Payload
	if payload == nil {
		payload = r.Kind.Fallback(r.Kind.ParseErrorMessage())
	}
	out := map[string]any{
		"agent":             r.Kind.DisplayName(),
		r.Kind.PayloadKey(): payload,
		"raw_response":      r.RawResponse,
	}
	if r.MemoryError != "" {
		out["memory_error"] = r.MemoryError
	}
	return json.Marshal(out)
}
