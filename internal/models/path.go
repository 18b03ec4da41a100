package models

import "github.com/eliaswendt/mcfp-optimizer/internal/itinerary"

// GroupRow is one stored table row: the group's path plus the remaining
// optimizer columns (start, destination, departure, arrival, passengers...)
type GroupRow struct {
	GroupID    int64
	Path       string
	Attributes map[string]string
}

// GroupPath is the decoded travel plan of one group
type GroupPath struct {
	GroupID    int64             `json:"groupId"`
	Path       string            `json:"path"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Events     []itinerary.Event `json:"events"`
	Lines      []string          `json:"lines"`
}

// NewGroupPath builds the response model for a decoded itinerary
func NewGroupPath(row GroupRow, it itinerary.Itinerary) GroupPath {
	gp := GroupPath{
		GroupID:    row.GroupID,
		Path:       row.Path,
		Attributes: row.Attributes,
		Events:     it,
		Lines:      make([]string, 0, len(it)),
	}
	for line := range it.Lines() {
		gp.Lines = append(gp.Lines, line)
	}
	return gp
}
