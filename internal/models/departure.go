package models

import (
	"time"

	"asemataulu.org/internal/junat"
)

// DepartureView is one row of the departures board.
type DepartureView struct {
	ScheduledTime    time.Time `json:"scheduledTime"`
	LiveEstimateTime time.Time `json:"liveEstimateTime"`
	DelayMinutes     int       `json:"delayMinutes"`
	Destination      string    `json:"destination"`
	TrainNumber      int       `json:"trainNumber"`
	DepartureDate    string    `json:"departureDate"`
	CommuterLineID   string    `json:"commuterLineId"`
}

// NewDepartureViews converts departures for display in loc. Delays are whole
// minutes, rounded down; early trains have a zero delay.
func NewDepartureViews(departures []junat.Departure, loc *time.Location) []DepartureView {
	if loc == nil {
		loc = time.UTC
	}

	views := make([]DepartureView, 0, len(departures))
	for _, d := range departures {
		delay := int(d.LiveEstimateTime.Sub(d.ScheduledTime) / time.Minute)
		if delay < 0 {
			delay = 0
		}

		views = append(views, DepartureView{
			ScheduledTime:    d.ScheduledTime.In(loc),
			LiveEstimateTime: d.LiveEstimateTime.In(loc),
			DelayMinutes:     delay,
			Destination:      d.Destination,
			TrainNumber:      d.Train.TrainNumber,
			DepartureDate:    d.Train.DepartureDate,
			CommuterLineID:   d.Train.CommuterLineID,
		})
	}
	return views
}
