package dto

import "github.com/venuehub/allocation-api/internal/models"

// GridCell is one rendered slot of the allocation calendar.
type GridCell struct {
	Key      string `json:"key"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Count    int    `json:"count"`
	HeatTier int    `json:"heatTier"`
	Accepted bool   `json:"accepted"`
	Active   bool   `json:"active"`
}

// GridResponse is the full weekly grid with occupancy for one unit.
type GridResponse struct {
	FirstHour int          `json:"firstHour"`
	LastHour  int          `json:"lastHour"`
	Days      [][]GridCell `json:"days"`
}

// EventPanel splits painted events into priority tiers for the action panel.
type EventPanel struct {
	Primary   []models.ApplicationEvent `json:"primary"`
	Secondary []models.ApplicationEvent `json:"secondary"`
}

// UnitEventsResponse groups a unit's events by decision state.
type UnitEventsResponse struct {
	Grouping models.EventGrouping `json:"grouping"`
	Panel    *EventPanel          `json:"panel,omitempty"`
}

// RoundStatusResponse backs the allocation-run status poll.
type RoundStatusResponse struct {
	Pk         int64  `json:"pk"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Allocating bool   `json:"allocating"`
}
