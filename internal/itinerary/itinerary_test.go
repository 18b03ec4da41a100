package itinerary

import (
	"bytes"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, "A$10$Arrival->$5$Transit->B$20$Departure"); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	expected := "Arrival at station A, time=10\n" +
		"\tTransit with duration 5\n" +
		"Departure at station B, time=20\n"
	if buf.String() != expected {
		t.Errorf("Print output = %q, expected %q", buf.String(), expected)
	}
}

func TestEventLine(t *testing.T) {
	tests := []struct {
		segment  string
		expected string
	}{
		{"T1$15$Wait", "\tWait with duration 15 in trip T1"},
		{"$15$Wait", "\tWait with duration 15"},
		{"Frankfurt Hbf$120$Departure", "Departure at station Frankfurt Hbf, time=120"},
		{"$0$Arrival", "Arrival at station , time=0"},
		{"42$8$Trip", "\tTrip with duration 8 in trip 42"},
		{"$3$Walk", "\tWalk with duration 3"},
		// Kinds are case sensitive
		{"X$1$arrival", "\tarrival with duration 1 in trip X"},
	}

	for _, tc := range tests {
		t.Run(tc.segment, func(t *testing.T) {
			it, err := Decode(tc.segment)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", tc.segment, err)
			}
			if len(it) != 1 {
				t.Fatalf("expected 1 event, got %d", len(it))
			}
			if got := it[0].Line(); got != tc.expected {
				t.Errorf("Line() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestLines_OnePerSegmentInOrder(t *testing.T) {
	path := "S1$100$Departure->9$20$Trip->S2$120$Arrival->$4$Walk->S3$124$Departure->11$6$Trip->S4$130$Arrival"
	it, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	lines := slices.Collect(it.Lines())
	segments := strings.Split(path, SegmentSeparator)
	if len(lines) != len(segments) {
		t.Fatalf("expected %d lines, got %d", len(segments), len(lines))
	}
	for i, e := range it {
		if lines[i] != e.Line() {
			t.Errorf("line %d = %q, expected %q", i, lines[i], e.Line())
		}
	}

	// The sequence can be consumed again
	if again := slices.Collect(it.Lines()); !reflect.DeepEqual(again, lines) {
		t.Error("second iteration differs from the first")
	}
}

func TestLines_StopsEarly(t *testing.T) {
	it, _ := Decode("A$1$Arrival->B$2$Departure->C$3$Arrival")
	var seen int
	for range it.Lines() {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("expected iteration to stop after 2 lines, saw %d", seen)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		index  int
		fields int
	}{
		{"empty path", "", 0, 1},
		{"two fields", "A$1$Arrival->B$2", 1, 2},
		{"four fields", "A$1$Arrival$x", 0, 4},
		{"trailing separator", "A$1$Arrival->", 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.path)
			if !errors.Is(err, ErrMalformedSegment) {
				t.Fatalf("Decode(%q) error = %v, expected ErrMalformedSegment", tc.path, err)
			}
			var segErr *SegmentError
			if !errors.As(err, &segErr) {
				t.Fatalf("expected *SegmentError, got %T", err)
			}
			if segErr.Index != tc.index || segErr.Fields != tc.fields {
				t.Errorf("SegmentError = %+v, expected index %d fields %d", segErr, tc.index, tc.fields)
			}
		})
	}
}

func TestPrint_MalformedWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, "A$1$Arrival->broken"); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestTrips(t *testing.T) {
	it, _ := Decode("A$10$Departure->7$12$Trip->B$22$Arrival->$5$Walk->C$27$Departure->8$3$Trip->D$30$Arrival")
	legs := it.Trips()
	if len(legs) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(legs))
	}
	if legs[0].Trip.Location != "7" || legs[1].Trip.Location != "8" {
		t.Errorf("unexpected trips %+v", legs)
	}
	if legs[1].Index != 5 || legs[1].From.Location != "C" || legs[1].To.Location != "D" {
		t.Errorf("unexpected second leg %+v", legs[1])
	}
}

func TestTrips_OpenEnds(t *testing.T) {
	it, _ := Decode("7$12$Trip->$5$Walk->8$3$Trip")
	legs := it.Trips()
	if len(legs) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(legs))
	}
	for _, leg := range legs {
		if leg.From != nil || leg.To != nil {
			t.Errorf("leg %+v should have no station events", leg)
		}
	}
}
