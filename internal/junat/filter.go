package junat

import (
	"slices"
	"sort"
	"time"

	"asemataulu.org/internal/stations"
)

// MaxDepartures bounds the ranked list and therefore the enrichment fan-out.
const MaxDepartures = 15

// IsLegitDeparture reports whether row is an upcoming departure that actually
// stops at station.
func IsLegitDeparture(row TimetableRow, station string, now time.Time) bool {
	return row.TrainStopping &&
		row.StationShortCode == station &&
		row.Type == RowDeparture &&
		!row.ScheduledTime.Before(now)
}

// RankDepartures turns the live-trains payload into at most MaxDepartures
// departures from station, ordered by scheduled time. Trains with equal scheduled
// times keep their payload order.
//
// A train that passes station more than once yields a single departure, timed by
// its earliest legitimate row. The train's chronologically last row is its
// terminal stop and supplies the destination.
func RankDepartures(trains []LiveTrain, station string, now time.Time) []Departure {
	departures := make([]Departure, 0, len(trains))

	for _, train := range trains {
		if len(train.TimeTableRows) == 0 {
			continue
		}

		rows := slices.Clone(train.TimeTableRows)
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ScheduledTime.Before(rows[j].ScheduledTime)
		})

		idx := slices.IndexFunc(rows, func(row TimetableRow) bool {
			return IsLegitDeparture(row, station, now)
		})
		if idx < 0 {
			continue
		}

		departures = append(departures, newDeparture(train, rows[idx], rows[len(rows)-1]))
	}

	sort.SliceStable(departures, func(i, j int) bool {
		return departures[i].ScheduledTime.Before(departures[j].ScheduledTime)
	})

	if len(departures) > MaxDepartures {
		departures = departures[:MaxDepartures]
	}

	return departures
}

func newDeparture(train LiveTrain, row, terminal TimetableRow) Departure {
	estimate := row.ScheduledTime
	if row.LiveEstimateTime != nil {
		estimate = *row.LiveEstimateTime
	}

	return Departure{
		ScheduledTime:    row.ScheduledTime,
		LiveEstimateTime: estimate,
		Destination:      stations.ResolveDestination(terminal.StationShortCode),
		Train: Train{
			TrainNumber:   train.TrainNumber,
			DepartureDate: train.DepartureDate,
		},
	}
}
