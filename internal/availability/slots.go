package availability

import (
	"time"

	"maitre/pkg/model"
)

// GenerateSlots expands a restaurant's enabled sittings into the candidate
// slots for one calendar day. The date is interpreted at restaurant-local
// midnight. Slots are emitted chronologically within each sitting, in the
// order sittings are supplied; they are not globally re-sorted.
//
// Pure function of its inputs. Occupancy is folded in separately, see
// Service.Slots.
func GenerateSlots(restaurant *model.Restaurant, sittings []*model.Sitting, date time.Time) []model.Slot {
	loc := restaurant.Location()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	interval := restaurant.SlotInterval()
	sessionLen := restaurant.SessionLength()
	if interval <= 0 || sessionLen <= 0 {
		return nil
	}

	var slots []model.Slot
	for _, sitting := range sittings {
		if !sitting.Enabled || !AppliesOn(sitting, day) {
			continue
		}

		sessionStart, ok := sittingStart(sitting, day)
		if !ok {
			continue
		}

		duration := sessionLen
		if sitting.MaxDurationMin != nil {
			duration = time.Duration(*sitting.MaxDurationMin) * time.Minute
		}
		sessionEnd := sessionStart.Add(duration)

		// A sitting too short to hold one full session contributes nothing.
		lastStart := sessionEnd.Add(-sessionLen)
		if lastStart.Before(sessionStart) {
			continue
		}

		for t := sessionStart; !t.After(lastStart); t = t.Add(interval) {
			slots = append(slots, model.Slot{
				Start: t.UTC(),
				End:   t.Add(sessionLen).UTC(),
			})
		}
	}

	return slots
}

// AppliesOn reports whether a sitting recurs on the given day, matched by
// weekday or by inclusive date range. A sitting with neither matches no
// dates.
func AppliesOn(sitting *model.Sitting, day time.Time) bool {
	if sitting.DayOfWeek != nil {
		return int(day.Weekday()) == *sitting.DayOfWeek
	}
	if sitting.StartDate != nil && sitting.EndDate != nil {
		d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		from := dateOnly(*sitting.StartDate)
		to := dateOnly(*sitting.EndDate)
		return !d.Before(from) && !d.After(to)
	}
	return false
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// OccupiedCovers sums covers over active bookings that overlap the window.
func OccupiedCovers(bookings []*model.Booking, start, end time.Time) int {
	total := 0
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			total += b.Covers
		}
	}
	return total
}

func sittingStart(sitting *model.Sitting, day time.Time) (time.Time, bool) {
	t, err := time.Parse("15:04", sitting.StartTime)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
