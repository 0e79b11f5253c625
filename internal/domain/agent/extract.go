package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// Outcome classifies how a payload was obtained.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeNoObject      Outcome = "no_object"
	OutcomeInvalidJSON   Outcome = "invalid_json"
	OutcomeRemoteFailure Outcome = "remote_failure"
	OutcomeInternal      Outcome = "internal_error"
)

// InvalidJSONMessage is the error marker for a brace-delimited slice that
// does not decode as a JSON object.
const InvalidJSONMessage = "Invalid JSON response"

// Extract pulls a JSON object out of free-form model output. It takes the
// text from the first '{' to the last '}' inclusive and decodes it as one
// object. There is no brace balancing: stray braces in surrounding prose end
// up inside the slice and make it invalid.
//
// Extract never fails. When nothing usable is found it returns the kind's
// error-marker payload and the matching outcome.
func Extract(raw string, kind Kind) (map[string]any, Outcome) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return kind.Fallback(kind.ParseErrorMessage()), OutcomeNoObject
	}

	obj, err := decodeObject(raw[start : end+1])
	if err != nil {
		return kind.Fallback(InvalidJSONMessage), OutcomeInvalidJSON
	}
	return obj, OutcomeOK
}

var (
	errTrailingData = errors.New("trailing data after object")
	errInvalidUTF8  = errors.New("object is not valid UTF-8")
)

// decodeObject decodes s as exactly one JSON object. Numbers are kept as
// json.Number so re-encoding reproduces them exactly. Invalid UTF-8 is
// rejected instead of being replaced with U+FFFD.
func decodeObject(s string) (map[string]any, error) {
	if !utf8.ValidString(s) {
		return nil, errInvalidUTF8
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not an object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return obj, nil
}
