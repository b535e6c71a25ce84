package dispatch

import (
	"sort"
	"time"

	"ecocollect-backend/internal/models"
)

// Availability is a driver's derived busy-state. It is recomputed from the
// driver's active tasks on every query; nothing here is cached.
type Availability struct {
	IsBusy    bool        // busy today
	BusyDates []time.Time // midnight-normalized calendar days, ascending
}

// Midnight normalizes a time to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// BusyState derives the busy calendar days from a driver's active tasks.
// Each active pickup claims its target date. Any active complaint claims
// today: complaints carry no stored date and are treated as due the day
// they are actioned, so a driver holding one stays today-busy until it
// is resolved.
func BusyState(now time.Time, active []models.Task) Availability {
	today := Midnight(now)
	seen := make(map[time.Time]struct{})

	for _, t := range active {
		if !t.Status.IsActive() {
			continue
		}
		switch t.Kind {
		case models.KindPickup:
			day := today
			if t.PickupDate != nil {
				day = Midnight(time.Unix(*t.PickupDate, 0).In(now.Location()))
			}
			seen[day] = struct{}{}
		case models.KindComplaint:
			seen[today] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	_, busyToday := seen[today]
	return Availability{IsBusy: busyToday, BusyDates: dates}
}
