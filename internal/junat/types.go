// Package junat builds the departure list for the tracked station from the
// digitraffic live-trains feed: it filters and ranks timetable rows, resolves
// destinations and enriches each departure with the train's commuter line.
package junat

import "time"

// RowType is the kind of a timetable row.
type RowType string

const (
	RowDeparture RowType = "DEPARTURE"
	RowArrival   RowType = "ARRIVAL"
)

// TimetableRow is one stop of a train's itinerary as delivered by digitraffic.
// LiveEstimateTime is absent for rows without a live prediction.
type TimetableRow struct {
	TrainStopping    bool       `json:"trainStopping"`
	StationShortCode string     `json:"stationShortCode"`
	Type             RowType    `json:"type"`
	ScheduledTime    time.Time  `json:"scheduledTime"`
	LiveEstimateTime *time.Time `json:"liveEstimateTime,omitempty"`
}

// LiveTrain is one element of the live-trains response.
type LiveTrain struct {
	TrainNumber   int            `json:"trainNumber"`
	DepartureDate string         `json:"departureDate"`
	TimeTableRows []TimetableRow `json:"timeTableRows"`
}

// Train identifies a train for one departure date. Train numbers are reused
// every day, so the pair (DepartureDate, TrainNumber) is the identity.
type Train struct {
	TrainNumber    int    `json:"trainNumber"`
	DepartureDate  string `json:"departureDate,omitempty"`
	CommuterLineID string `json:"commuterLineID,omitempty"`
}

// Departure is a ranked departure from the tracked station. LiveEstimateTime equals
// ScheduledTime when digitraffic has no live estimate for the row.
type Departure struct {
	ScheduledTime    time.Time
	LiveEstimateTime time.Time
	Destination      string
	Train            Train
}
