package agent_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Strob0t/TripForge/internal/domain/agent"
)

func TestExtractValidObjectWithProse(t *testing.T) {
	raw := "Sure! Here is your plan:\n```json\n{\"days\": [{\"day\": 1, \"activities\": []}], \"total_estimated_cost\": 412.50}\n```\nEnjoy Paris."

	got, outcome := agent.Extract(raw, agent.KindItinerary)
	if outcome != agent.OutcomeOK {
		t.Fatalf("expected ok outcome, got %s", outcome)
	}

	days, ok := got["days"].([]any)
	if !ok || len(days) != 1 {
		t.Fatalf("expected one day, got %#v", got["days"])
	}
	if got["total_estimated_cost"] != json.Number("412.50") {
		t.Errorf("expected exact number 412.50, got %#v", got["total_estimated_cost"])
	}
	if _, hasErr := got["error"]; hasErr {
		t.Error("successful extraction must not carry an error marker")
	}
}

func TestExtractRoundTripsExactly(t *testing.T) {
	obj := `{"budget_levels":{"budget":{"total":825}},"money_saving_tips":["Walk"],"budget_alerts":[]}`

	got, outcome := agent.Extract("prefix "+obj+" suffix", agent.KindCost)
	if outcome != agent.OutcomeOK {
		t.Fatalf("expected ok outcome, got %s", outcome)
	}
	out, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var want, have map[string]any
	_ = json.Unmarshal([]byte(obj), &want)
	_ = json.Unmarshal(out, &have)
	if !reflect.DeepEqual(want, have) {
		t.Errorf("payload changed:\nwant %s\ngot  %s", obj, out)
	}
}

func TestExtractNoObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind agent.Kind
		want map[string]any
	}{
		{
			name: "prose only itinerary",
			raw:  "I'm sorry, I cannot help with that.",
			kind: agent.KindItinerary,
			want: map[string]any{"days": []any{}, "error": "Could not parse itinerary"},
		},
		{
			name: "empty cost",
			raw:  "",
			kind: agent.KindCost,
			want: map[string]any{"error": "Could not parse cost estimate"},
		},
		{
			name: "only opening brace",
			raw:  "{ never closed",
			kind: agent.KindCulture,
			want: map[string]any{"error": "Could not parse cultural advice"},
		},
		{
			name: "closing before opening",
			raw:  "} backwards {",
			kind: agent.KindCost,
			want: map[string]any{"error": "Could not parse cost estimate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := agent.Extract(tt.raw, tt.kind)
			if outcome != agent.OutcomeNoObject {
				t.Errorf("expected no_object outcome, got %s", outcome)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestExtractInvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind agent.Kind
		want map[string]any
	}{
		{
			name: "malformed object",
			raw:  `{"days": [1, 2,}`,
			kind: agent.KindItinerary,
			want: map[string]any{"days": []any{}, "error": "Invalid JSON response"},
		},
		{
			name: "stray brace in prose",
			raw:  `Use {curly} quotes. {"a": 1}`,
			kind: agent.KindCulture,
			want: map[string]any{"error": "Invalid JSON response"},
		},
		{
			name: "invalid utf-8 inside object",
			raw:  "\xff{\"a\":\"\xfe\"}",
			kind: agent.KindCost,
			want: map[string]any{"error": "Invalid JSON response"},
		},
		{
			name: "two objects",
			raw:  `{"a": 1} and {"b": 2}`,
			kind: agent.KindCost,
			want: map[string]any{"error": "Invalid JSON response"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := agent.Extract(tt.raw, tt.kind)
			if outcome != agent.OutcomeInvalidJSON {
				t.Errorf("expected invalid_json outcome, got %s", outcome)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestResultMarshalJSON(t *testing.T) {
	r := agent.Result{
		Kind:        agent.KindCost,
		Payload:     map[string]any{"budget_alerts": []any{}},
		RawResponse: "raw",
		Outcome:     agent.OutcomeOK,
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["agent"] != "Cost Estimator" {
		t.Errorf("expected agent Cost Estimator, got %v", got["agent"])
	}
	if _, ok := got["cost_breakdown"].(map[string]any); !ok {
		t.Errorf("expected cost_breakdown object, got %#v", got["cost_breakdown"])
	}
	if got["raw_response"] != "raw" {
		t.Errorf("expected raw_response raw, got %v", got["raw_response"])
	}
	if _, ok := got["memory_error"]; ok {
		t.Error("memory_error should be omitted when empty")
	}
}

func TestResultMarshalJSONMemoryError(t *testing.T) {
	r := agent.Result{
		Kind:        agent.KindItinerary,
		Payload:     map[string]any{"days": []any{}},
		MemoryError: "disk full",
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	_ = json.Unmarshal(data, &got)
	if got["memory_error"] != "disk full" {
		t.Errorf("expected memory_error, got %v", got["memory_error"])
	}
}

func TestKindKeys(t *testing.T) {
	tests := []struct {
		kind     agent.Kind
		name     string
		payload  string
		envelope string
	}{
		{agent.KindItinerary, "Itinerary Builder", "itinerary", "itinerary"},
		{agent.KindCost, "Cost Estimator", "cost_breakdown", "cost_estimate"},
		{agent.KindCulture, "Local Culture Coach", "cultural_guide", "cultural_guide"},
	}
	for _, tt := range tests {
		if tt.kind.DisplayName() != tt.name {
			t.Errorf("%s: display name %q", tt.kind, tt.kind.DisplayName())
		}
		if tt.kind.PayloadKey() != tt.payload {
			t.Errorf("%s: payload key %q", tt.kind, tt.kind.PayloadKey())
		}
		if tt.kind.EnvelopeKey() != tt.envelope {
			t.Errorf("%s: envelope key %q", tt.kind, tt.kind.EnvelopeKey())
		}
	}
	if agent.Kind("weather").Valid() {
		t.Error("unknown kind reported valid")
	}
}

func TestExtractIgnoresInvalidUTF8OutsideObject(t *testing.T) {
	got, outcome := agent.Extract("\xff note: {\"a\":\"ü\"} \xfe", agent.KindCost)
	if outcome != agent.OutcomeOK {
		t.Fatalf("expected ok outcome, got %s", outcome)
	}
	if got["a"] != "ü" {
		t.Errorf("got %#v", got)
	}
}
