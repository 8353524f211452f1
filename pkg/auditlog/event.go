package auditlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/fissure/pkg/formatting"
)

// Kind identifies the type of an audit event. Values outside the known set
// are preserved as-is so newer writers never break older readers.
type Kind string

const (
	KindAccessGranted           Kind = "access_granted"
	KindAccessDenied            Kind = "access_denied"
	KindClassificationPerformed Kind = "classification_performed"
)

// Known reports whether k is one of the kinds this package defines.
func (k Kind) Known() bool {
	switch k {
	case KindAccessGranted, KindAccessDenied, KindClassificationPerformed:
		return true
	}
	return false
}

// IsAccess reports whether k records an access decision.
func (k Kind) IsAccess() bool {
	return k == KindAccessGranted || k == KindAccessDenied
}

// UnknownActor is recorded when an event has no identifiable actor.
const UnknownActor = "unknown"

// Payload keys.
const (
	KeyDescription = "description"
	KeyResultLabel = "result_label"
	KeyConfidence  = "confidence"
	KeyRole        = "role"
	KeyDetails     = "details"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Event is a single immutable audit record.
//
// RawPayload holds the payload exactly as read when it was not a flat
// string map, as newer writers may emit for kinds this package does not
// know. Payload then carries a string rendering of each top-level value,
// and RawPayload is written back unchanged.
type Event struct {
	Actor      string
	Kind       Kind
	Payload    map[string]string
	RawPayload json.RawMessage
	Timestamp  time.Time
}

// NewEvent builds an Event with a copied payload and a timestamp normalised
// to UTC without a monotonic clock reading. A zero at means now; a blank
// actor is recorded as UnknownActor.
func NewEvent(actor string, kind Kind, payload map[string]string, at time.Time) Event {
	if strings.TrimSpace(actor) == "" {
		actor = UnknownActor
	}
	if at.IsZero() {
		at = time.Now()
	}
	var p map[string]string
	if len(payload) > 0 {
		p = maps.Clone(payload)
	}
	return Event{
		Actor:     actor,
		Kind:      kind,
		Payload:   p,
		Timestamp: at.UTC(),
	}
}

// Date returns the event date as YYYY-MM-DD.
func (e Event) Date() string {
	return e.Timestamp.Format(dateLayout)
}

// Time returns the event wall-clock time as HH:MM:SS.
func (e Event) Time() string {
	return e.Timestamp.Format(timeLayout)
}

type record struct {
	Actor     string          `json:"actor"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	Timestamp string          `json:"timestamp"`
}

// MarshalJSON writes the file record form, deriving date and time from the timestamp.
func (e Event) MarshalJSON() ([]byte, error) {
	payload := e.RawPayload
	if payload == nil {
		var err error
		if payload, err = json.Marshal(e.Payload); err != nil {
			return nil, err
		}
	}
	return json.Marshal(record{
		Actor:     e.Actor,
		Kind:      e.Kind,
		Payload:   payload,
		Date:      e.Date(),
		Time:      e.Time(),
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON reads the file record form. The timestamp is authoritative;
// date and time are only used when the timestamp is absent.
func (e *Event) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if r.Kind == "" {
		return fmt.Errorf("event missing kind")
	}

	ts, err := parseTimestamp(r)
	if err != nil {
		return err
	}

	payload, raw, err := decodePayload(r.Payload)
	if err != nil {
		return err
	}

	*e = Event{
		Actor:      r.Actor,
		Kind:       r.Kind,
		Payload:    payload,
		RawPayload: raw,
		Timestamp:  ts,
	}
	return nil
}

// decodePayload returns a flat string map as-is. Any other JSON object is
// flattened to strings, with nested values rendered as compact JSON, and
// the original bytes are returned alongside. A non-object payload is kept
// raw with an empty map.
func decodePayload(data json.RawMessage) (map[string]string, json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil, nil
	}

	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err == nil {
		return flat, nil, nil
	}

	raw := json.RawMessage(slices.Clone(data))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		if !json.Valid(data) {
			return nil, nil, fmt.Errorf("invalid payload: %w", err)
		}
		return nil, raw, nil
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			out[k] = str
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, nil, fmt.Errorf("invalid payload field %q: %w", k, err)
		}
		out[k] = buf.String()
	}
	return out, raw, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(r record) (time.Time, error) {
	if r.Timestamp != "" {
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, r.Timestamp, time.UTC); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid timestamp %q", r.Timestamp)
	}
	if r.Date != "" && r.Time != "" {
		t, err := time.ParseInLocation(dateLayout+" "+timeLayout, r.Date+" "+r.Time, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", r.Date, r.Time, err)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("event missing timestamp")
}

// ClassificationPayload is the payload of a classification_performed event.
type ClassificationPayload struct {
	Description string `json:"description"`
	ResultLabel string `json:"result_label"`
	Confidence  string `json:"confidence"`
}

// Map returns the payload as event payload entries.
func (p ClassificationPayload) Map() map[string]string {
	return map[string]string{
		KeyDescription: p.Description,
		KeyResultLabel: p.ResultLabel,
		KeyConfidence:  p.Confidence,
	}
}

// Classification decodes the payload of a classification_performed event.
func (e Event) Classification() (ClassificationPayload, bool) {
	if e.Kind != KindClassificationPerformed {
		return ClassificationPayload{}, false
	}
	return ClassificationPayload{
		Description: e.Payload[KeyDescription],
		ResultLabel: e.Payload[KeyResultLabel],
		Confidence:  e.Payload[KeyConfidence],
	}, true
}

// AccessPayload is the payload of an access_granted or access_denied event.
type AccessPayload struct {
	Role    string `json:"role,omitempty"`
	Details string `json:"details,omitempty"`
}

// Map returns the non-empty payload entries.
func (p AccessPayload) Map() map[string]string {
	m := make(map[string]string, 2)
	if p.Role != "" {
		m[KeyRole] = p.Role
	}
	if p.Details != "" {
		m[KeyDetails] = p.Details
	}
	return m
}

// Access decodes the payload of an access event.
func (e Event) Access() (AccessPayload, bool) {
	if !e.Kind.IsAccess() {
		return AccessPayload{}, false
	}
	return AccessPayload{
		Role:    e.Payload[KeyRole],
		Details: e.Payload[KeyDetails],
	}, true
}

// FormatConfidence renders a probability as a percentage string with two
// decimals, e.g. 0.9345 -> "93.45%".
func FormatConfidence(p float64) string {
	return formatting.FormatPercent(p, 2)
}

// ParseConfidence is the inverse of FormatConfidence.
func ParseConfidence(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("parse confidence %q: %w", s, err)
	}
	return v / 100, nil
}
