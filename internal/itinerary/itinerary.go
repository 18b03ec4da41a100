// Package itinerary decodes the path strings written by the optimizer
// ("location$time$kind" segments joined by "->") and renders them as
// travel plans.
package itinerary

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

const (
	// SegmentSeparator joins the segments of a path string
	SegmentSeparator = "->"
	// FieldSeparator joins location, time and kind within a segment
	FieldSeparator = "$"
)

// Station event kinds. Any other label (the optimizer writes Trip and
// Walk) is an in-transit segment.
const (
	KindArrival   = "Arrival"
	KindDeparture = "Departure"
)

// ErrMalformedSegment marks a segment that does not hold exactly three fields
var ErrMalformedSegment = errors.New("malformed path segment")

// SegmentError reports which segment of a path string could not be decoded
type SegmentError struct {
	Index   int
	Segment string
	Fields  int
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d %q: expected 3 fields, got %d", e.Index, e.Segment, e.Fields)
}

func (e *SegmentError) Unwrap() error {
	return ErrMalformedSegment
}

// Event is one decoded segment of a path string
type Event struct {
	Location string `json:"location"`
	Time     string `json:"time"`
	Kind     string `json:"kind"`
}

// IsStationEvent reports whether the event happens at a station
// (arrival or departure) rather than in transit.
func (e Event) IsStationEvent() bool {
	return e.Kind == KindArrival || e.Kind == KindDeparture
}

// Line renders the event as a single travel plan line
func (e Event) Line() string {
	if e.IsStationEvent() {
		return e.Kind + " at station " + e.Location + ", time=" + e.Time
	}
	line := "\t" + e.Kind + " with duration " + e.Time
	if e.Location != "" {
		line += " in trip " + e.Location
	}
	return line
}

// Itinerary is the ordered sequence of events of one path string
type Itinerary []Event

// Decode splits a path string into its events, keeping segment order
func Decode(path string) (Itinerary, error) {
	segments := strings.Split(path, SegmentSeparator)
	events := make(Itinerary, 0, len(segments))
	for i, segment := range segments {
		event, err := decodeSegment(segment)
		if err != nil {
			var segErr *SegmentError
			if errors.As(err, &segErr) {
				segErr.Index = i
			}
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func decodeSegment(segment string) (Event, error) {
	fields := strings.Split(segment, FieldSeparator)
	if len(fields) != 3 {
		return Event{}, &SegmentError{Segment: segment, Fields: len(fields)}
	}
	return Event{Location: fields[0], Time: fields[1], Kind: fields[2]}, nil
}

// Lines yields one travel plan line per event, in order
func (it Itinerary) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range it {
			if !yield(e.Line()) {
				return
			}
		}
	}
}

// Leg is one trip of an itinerary together with the station events
// directly before and after it
type Leg struct {
	Index int // position of the trip event in the itinerary
	Trip  Event
	From  *Event // boarding station event, nil when the trip starts the path
	To    *Event // alighting station event, nil when the trip ends the path
}

// Trips returns the in-transit events that name a trip, in order.
// Walks carry no trip id and are left out.
func (it Itinerary) Trips() []Leg {
	var legs []Leg
	for i, e := range it {
		if e.IsStationEvent() || e.Location == "" {
			continue
		}
		leg := Leg{Index: i, Trip: e}
		if i > 0 && it[i-1].IsStationEvent() {
			leg.From = &it[i-1]
		}
		if i+1 < len(it) && it[i+1].IsStationEvent() {
			leg.To = &it[i+1]
		}
		legs = append(legs, leg)
	}
	return legs
}

// Print decodes path and writes its travel plan to w, one line per event.
// Nothing is written when the path cannot be decoded.
func Print(w io.Writer, path string) error {
	it, err := Decode(path)
	if err != nil {
		return err
	}
	return it.Write(w)
}

// Write writes the travel plan lines of it to w
func (it Itinerary) Write(w io.Writer) error {
	for line := range it.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write travel plan: %w", err)
		}
	}
	return nil
}
