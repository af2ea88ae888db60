package domain

import "time"

// POIEventType names a change to the POI set.
type POIEventType string

const (
	POIAdded   POIEventType = "added"
	POIDeleted POIEventType = "deleted"
	POICleared POIEventType = "cleared"
)

// POIEvent is broadcast whenever the stored POI set changes, so that open
// map views can recluster.
type POIEvent struct {
	Type       POIEventType `json:"type"`
	POI        *POI         `json:"poi,omitempty"`
	ID         string       `json:"id,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
