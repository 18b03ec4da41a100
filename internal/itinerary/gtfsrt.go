package itinerary

import (
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// ToFeedMessage exports the trips of an itinerary as GTFS-RT TripUpdates.
// Each leg becomes one entity: the station event before the trip is its
// departure, the one after it its arrival. Walks are left out.
func ToFeedMessage(groupID int64, it Itinerary, now time.Time) *gtfs.FeedMessage {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(now.UTC().Unix())),
		},
	}

	for _, leg := range it.Trips() {
		update := &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{
				TripId: proto.String(leg.Trip.Location),
			},
		}
		if leg.From != nil {
			update.StopTimeUpdate = append(update.StopTimeUpdate, &gtfs.TripUpdate_StopTimeUpdate{
				StopId:    proto.String(leg.From.Location),
				Departure: stopTimeEvent(leg.From.Time),
			})
		}
		if leg.To != nil {
			update.StopTimeUpdate = append(update.StopTimeUpdate, &gtfs.TripUpdate_StopTimeUpdate{
				StopId:  proto.String(leg.To.Location),
				Arrival: stopTimeEvent(leg.To.Time),
			})
		}

		feed.Entity = append(feed.Entity, &gtfs.FeedEntity{
			Id:         proto.String(fmt.Sprintf("group-%d-%d", groupID, leg.Index)),
			TripUpdate: update,
		})
	}

	return feed
}

// MarshalFeed encodes the GTFS-RT export of an itinerary
func MarshalFeed(groupID int64, it Itinerary, now time.Time) ([]byte, error) {
	data, err := proto.Marshal(ToFeedMessage(groupID, it, now))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed: %w", err)
	}
	return data, nil
}

// stopTimeEvent carries numeric path times unchanged; other times are omitted
func stopTimeEvent(value string) *gtfs.TripUpdate_StopTimeEvent {
	stopEvent := &gtfs.TripUpdate_StopTimeEvent{}
	if t, err := strconv.ParseInt(value, 10, 64); err == nil {
		stopEvent.Time = proto.Int64(t)
	}
	return stopEvent
}
