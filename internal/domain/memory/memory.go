// Package memory defines the persistent travel memory document: past trips,
// learned preferences, and visited places.
package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/Strob0t/TripForge/internal/domain"
)

// Well-known top-level keys.
const (
	KeyTrips         = "trips"
	KeyPreferences   = "preferences"
	KeyVisitedPlaces = "visited_places"
)

// Document is the whole memory store. It is loaded, modified and saved as a
// unit; there is no per-entry update.
//
// Trips are kept as raw JSON so documents written by older versions, whose
// records may not match the current record shape, survive a load/save cycle
// unchanged. Extra holds any other top-level key, including lists created by
// Append with an unknown key.
type Document struct {
	Trips         []json.RawMessage          `json:"trips"`
	Preferences   map[string]any             `json:"preferences"`
	VisitedPlaces []string                   `json:"visited_places"`
	Extra         map[string]json.RawMessage `json:"-"`
}

// Empty returns the canonical empty document.
func Empty() *Document {
	return &Document{
		Trips:         []json.RawMessage{},
		Preferences:   map[string]any{},
		VisitedPlaces: []string{},
	}
}

// Snapshot is the externally visible part of a document. Extra keys stay
// in storage but are not exposed to API or tool callers.
type Snapshot struct {
	Trips         []json.RawMessage `json:"trips"`
	Preferences   map[string]any    `json:"preferences"`
	VisitedPlaces []string          `json:"visited_places"`
}

// Snapshot returns the three well-known keys with nil collections replaced.
func (d *Document) Snapshot() Snapshot {
	d.Normalize()
	return Snapshot{
		Trips:         d.Trips,
		Preferences:   d.Preferences,
		VisitedPlaces: d.VisitedPlaces,
	}
}

// Normalize replaces nil collections with empty ones.
func (d *Document) Normalize() {
	if d.Trips == nil {
		d.Trips = []json.RawMessage{}
	}
	if d.Preferences == nil {
		d.Preferences = map[string]any{}
	}
	if d.VisitedPlaces == nil {
		d.VisitedPlaces = []string{}
	}
}

// Append adds v to the list stored under key, creating the list if needed.
// Appending to preferences, or to a non-list extra key, is a validation error.
func (d *Document) Append(key string, v any) error {
	d.Normalize()
	switch key {
	case KeyTrips:
		raw, err := encode(v)
		if err != nil {
			return fmt.Errorf("encode trip: %w", err)
		}
		d.Trips = append(d.Trips, raw)
		return nil
	case KeyVisitedPlaces:
		place, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: visited_places entries must be text", domain.ErrValidation)
		}
		d.VisitedPlaces = append(d.VisitedPlaces, place)
		return nil
	case KeyPreferences:
		return fmt.Errorf("%w: preferences is not a list", domain.ErrValidation)
	}

	var list []json.RawMessage
	if existing, ok := d.Extra[key]; ok {
		if err := json.Unmarshal(existing, &list); err != nil || list == nil {
			return fmt.Errorf("%w: %s is not a list", domain.ErrValidation, key)
		}
	}
	raw, err := encode(v)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", key, err)
	}
	list = append(list, raw)
	encoded, err := encode(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if d.Extra == nil {
		d.Extra = map[string]json.RawMessage{}
	}
	d.Extra[key] = encoded
	return nil
}

// List returns the raw entries stored under key.
func (d *Document) List(key string) ([]json.RawMessage, error) {
	switch key {
	case KeyTrips:
		return d.Trips, nil
	case KeyVisitedPlaces:
		out := make([]json.RawMessage, 0, len(d.VisitedPlaces))
		for _, p := range d.VisitedPlaces {
			raw, _ := encode(p)
			out = append(out, raw)
		}
		return out, nil
	case KeyPreferences:
		return nil, fmt.Errorf("%w: preferences is not a list", domain.ErrValidation)
	}
	existing, ok := d.Extra[key]
	if !ok {
		return nil, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(existing, &list); err != nil {
		return nil, fmt.Errorf("%w: %s is not a list", domain.ErrValidation, key)
	}
	return list, nil
}

// MarshalJSON writes the known keys followed by extra keys in sorted order.
func (d Document) MarshalJSON() ([]byte, error) {
	d.Normalize()

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		data, err := encode(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		buf.Write(data)
		return nil
	}

	if err := write(KeyTrips, d.Trips); err != nil {
		return nil, err
	}
	if err := write(KeyPreferences, d.Preferences); err != nil {
		return nil, err
	}
	if err := write(KeyVisitedPlaces, d.VisitedPlaces); err != nil {
		return nil, err
	}
	for _, key := range slices.Sorted(maps.Keys(d.Extra)) {
		if err := write(key, d.Extra[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts partial documents; missing collections are left nil
// and filled by Normalize.
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*d = Document{}
	if raw, ok := fields[KeyTrips]; ok {
		if err := json.Unmarshal(raw, &d.Trips); err != nil {
			return fmt.Errorf("decode trips: %w", err)
		}
		delete(fields, KeyTrips)
	}
	if raw, ok := fields[KeyPreferences]; ok {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&d.Preferences); err != nil {
			return fmt.Errorf("decode preferences: %w", err)
		}
		delete(fields, KeyPreferences)
	}
	if raw, ok := fields[KeyVisitedPlaces]; ok {
		if err := json.Unmarshal(raw, &d.VisitedPlaces); err != nil {
			return fmt.Errorf("decode visited_places: %w", err)
		}
		delete(fields, KeyVisitedPlaces)
	}
	if len(fields) > 0 {
		d.Extra = fields
	}
	d.Normalize()
	return nil
}

// encode marshals v without HTML escaping so stored text stays literal.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
