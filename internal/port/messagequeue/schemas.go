package messagequeue

import "time"

// TripPlannedPayload is the schema for trips.planned messages.
type TripPlannedPayload struct {
	RequestID   string            `json:"request_id,omitempty"`
	Destination string            `json:"destination"`
	Budget      float64           `json:"budget"`
	Duration    int               `json:"duration"`
	Interests   []string          `json:"interests"`
	Agent       string            `json:"agent"`
	Outcomes    map[string]string `json:"outcomes"` // pipeline kind -> extraction outcome
	PlannedAt   time.Time         `json:"planned_at"`
}

// MemoryClearedPayload is the schema for trips.memory.cleared messages.
type MemoryClearedPayload struct {
	RequestID string    `json:"request_id,omitempty"`
	ClearedAt time.Time `json:"cleared_at"`
}
