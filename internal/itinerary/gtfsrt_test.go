package itinerary

import (
	"testing"
	"time"

	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

func TestToFeedMessage(t *testing.T) {
	it, err := Decode("A$100$Departure->7$20$Trip->B$120$Arrival->$4$Walk->C$124$Departure->9$6$Trip->D$130$Arrival")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	feed := ToFeedMessage(5, it, now)

	if feed.GetHeader().GetTimestamp() != uint64(now.Unix()) {
		t.Errorf("header timestamp = %d, expected %d", feed.GetHeader().GetTimestamp(), now.Unix())
	}
	if len(feed.Entity) != 2 {
		t.Fatalf("expected 2 entities (one per trip), got %d", len(feed.Entity))
	}

	first := feed.Entity[0]
	if first.GetId() != "group-5-1" {
		t.Errorf("entity id = %q, expected %q", first.GetId(), "group-5-1")
	}
	update := first.GetTripUpdate()
	if update.GetTrip().GetTripId() != "7" {
		t.Errorf("trip id = %q, expected %q", update.GetTrip().GetTripId(), "7")
	}
	if len(update.StopTimeUpdate) != 2 {
		t.Fatalf("expected 2 stop time updates, got %d", len(update.StopTimeUpdate))
	}

	dep := update.StopTimeUpdate[0]
	if dep.GetStopId() != "A" || dep.GetDeparture().GetTime() != 100 || dep.Arrival != nil {
		t.Errorf("unexpected departure update %v", dep)
	}
	arr := update.StopTimeUpdate[1]
	if arr.GetStopId() != "B" || arr.GetArrival().GetTime() != 120 || arr.Departure != nil || arr.StopSequence != nil {
		t.Errorf("unexpected arrival update %v", arr)
	}
}

func TestToFeedMessage_PositionDecidesDirection(t *testing.T) {
	// Kinds are swapped around the trip; position still decides
	it, _ := Decode("A$100$Arrival->7$20$Trip->B$120$Departure")
	feed := ToFeedMessage(1, it, time.Now())

	stu := feed.Entity[0].GetTripUpdate().StopTimeUpdate
	if len(stu) != 2 {
		t.Fatalf("expected 2 stop time updates, got %d", len(stu))
	}
	if stu[0].GetStopId() != "A" || stu[0].GetDeparture().GetTime() != 100 || stu[0].Arrival != nil {
		t.Errorf("boarding station should be a departure, got %v", stu[0])
	}
	if stu[1].GetStopId() != "B" || stu[1].GetArrival().GetTime() != 120 || stu[1].Departure != nil {
		t.Errorf("alighting station should be an arrival, got %v", stu[1])
	}
}

func TestToFeedMessage_NonNumericTime(t *testing.T) {
	it, _ := Decode("A$08:15$Departure->7$20$Trip")
	feed := ToFeedMessage(1, it, time.Now())

	stu := feed.Entity[0].GetTripUpdate().StopTimeUpdate
	if len(stu) != 1 {
		t.Fatalf("expected 1 stop time update, got %d", len(stu))
	}
	if stu[0].GetDeparture().Time != nil {
		t.Error("non-numeric time should be omitted")
	}
}

func TestMarshalFeed(t *testing.T) {
	it, _ := Decode("A$1$Departure->3$2$Trip->B$3$Arrival")
	data, err := MarshalFeed(2, it, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("MarshalFeed failed: %v", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(data, feed); err != nil {
		t.Fatalf("failed to decode feed: %v", err)
	}
	if len(feed.Entity) != 1 || feed.Entity[0].GetTripUpdate().GetTrip().GetTripId() != "3" {
		t.Errorf("unexpected feed %v", feed)
	}
}
