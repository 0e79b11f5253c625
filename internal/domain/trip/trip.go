// Package trip defines the trip-planning request and the persisted trip record.
package trip

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/TripForge/internal/domain"
)

// DefaultDuration is the trip length in days used when the request omits it.
const DefaultDuration = 3

// Selection names which domain pipelines a request runs.
type Selection string

const (
	SelectAll       Selection = "all"
	SelectItinerary Selection = "itinerary"
	SelectCost      Selection = "cost"
	SelectCulture   Selection = "culture"
)

// ValidSelections lists all accepted values of Request.Agent.
var ValidSelections = []Selection{SelectAll, SelectItinerary, SelectCost, SelectCulture}

// Request carries the user's trip parameters. It is passed by value and
// never modified after validation.
type Request struct {
	Destination string    `json:"destination"`
	Budget      float64   `json:"budget"`
	Interests   []string  `json:"interests"`
	Duration    int       `json:"duration"`
	Agent       Selection `json:"agent,omitempty"`
}

// WithDefaults returns a copy of r with omitted fields filled in.
func (r Request) WithDefaults() Request {
	r.Destination = strings.TrimSpace(r.Destination)
	if r.Duration == 0 {
		r.Duration = DefaultDuration
	}
	if r.Agent == "" {
		r.Agent = SelectAll
	}
	if r.Interests == nil {
		r.Interests = []string{}
	} else {
		r.Interests = slices.Clone(r.Interests)
	}
	return r
}

// Validate checks the request after defaults have been applied.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", domain.ErrValidation)
	}
	if r.Duration < 1 {
		return fmt.Errorf("%w: duration must be a positive number of days", domain.ErrValidation)
	}
	if !slices.Contains(ValidSelections, r.Agent) {
		return fmt.Errorf("%w: Invalid agent specified", domain.ErrValidation)
	}
	return nil
}

// Record is the persisted summary of one itinerary-planning request.
// Records are appended to the memory document and never edited.
type Record struct {
	ID          string         `json:"id,omitempty"`
	Destination string         `json:"destination"`
	Budget      float64        `json:"budget"`
	Interests   []string       `json:"interests"`
	Duration    int            `json:"duration"`
	Itinerary   map[string]any `json:"itinerary"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewRecord builds the record for req with the given itinerary payload.
func NewRecord(req Request, itinerary map[string]any, now time.Time) Record {
	interests := req.Interests
	if interests == nil {
		interests = []string{}
	}
	return Record{
		ID:          uuid.NewString(),
		Destination: req.Destination,
		Budget:      req.Budget,
		Interests:   interests,
		Duration:    req.Duration,
		Itinerary:   itinerary,
		CreatedAt:   now,
	}
}
