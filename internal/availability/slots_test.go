package availability

import (
	"testing"
	"time"

	"maitre/pkg/model"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func testRestaurant() *model.Restaurant {
	return &model.Restaurant{
		ID:                   "64b0a1b2c3d4e5f601234567",
		Name:                 "Chez Test",
		MaxCapacity:          20,
		SlotIntervalMin:      15,
		DefaultSessionLenMin: 150,
	}
}

func fridayDinner() *model.Sitting {
	// 2026-09-04 is a Friday.
	return &model.Sitting{
		Name:      "Dinner",
		DayOfWeek: intPtr(5),
		StartTime: "18:00",
		Enabled:   true,
	}
}

func TestGenerateSlotsEnumeratesInterval(t *testing.T) {
	restaurant := testRestaurant()
	sitting := fridayDinner()
	sitting.MaxDurationMin = intPtr(240)

	date := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	slots := GenerateSlots(restaurant, []*model.Sitting{sitting}, date)

	// Session 18:00-22:00, session length 150m, last start 19:30,
	// 15m steps: 18:00, 18:15, ..., 19:30 = 7 slots.
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(slots))
	}

	first := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	for i, slot := range slots {
		wantStart := first.Add(time.Duration(i) * 15 * time.Minute)
		if !slot.Start.Equal(wantStart) {
			t.Errorf("slot %d: expected start %v, got %v", i, wantStart, slot.Start)
		}
		if !slot.End.Equal(wantStart.Add(150 * time.Minute)) {
			t.Errorf("slot %d: expected end %v, got %v", i, wantStart.Add(150*time.Minute), slot.End)
		}
	}
}

func TestGenerateSlotsExactlyOneSlotWhenDurationEqualsSession(t *testing.T) {
	restaurant := testRestaurant()
	sitting := fridayDinner()
	// Sitting duration equals the session length: lastStart == sessionStart.
	sitting.MaxDurationMin = intPtr(150)

	date := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	slots := GenerateSlots(restaurant, []*model.Sitting{sitting}, date)

	if len(slots) != 1 {
		t.Fatalf("expected exactly 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected slot start %v", slots[0].Start)
	}
}

func TestGenerateSlotsShortSittingYieldsNone(t *testing.T) {
	restaurant := testRestaurant()
	sitting := fridayDinner()
	// Shorter than one session: empty contribution, not an error.
	sitting.MaxDurationMin = intPtr(60)

	date := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	slots := GenerateSlots(restaurant, []*model.Sitting{sitting}, date)

	if len(slots) != 0 {
		t.Fatalf("expected no slots from a too-short sitting, got %d", len(slots))
	}
}

func TestGenerateSlotsSkipsDisabledAndNonMatching(t *testing.T) {
	restaurant := testRestaurant()

	disabled := fridayDinner()
	disabled.Enabled = false

	wrongDay := fridayDinner()
	wrongDay.DayOfWeek = intPtr(1)

	neither := fridayDinner()
	neither.DayOfWeek = nil

	date := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	slots := GenerateSlots(restaurant, []*model.Sitting{disabled, wrongDay, neither}, date)

	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestGenerateSlotsDateRangeSitting(t *testing.T) {
	restaurant := testRestaurant()
	sitting := &model.Sitting{
		Name:           "Festival",
		StartDate:      timePtr(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:        timePtr(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)),
		StartTime:      "12:00",
		MaxDurationMin: intPtr(180),
		Enabled:        true,
	}

	inside := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	if slots := GenerateSlots(restaurant, []*model.Sitting{sitting}, inside); len(slots) == 0 {
		t.Error("expected slots inside the date range")
	}

	// Range bounds are inclusive.
	lastDay := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	if slots := GenerateSlots(restaurant, []*model.Sitting{sitting}, lastDay); len(slots) == 0 {
		t.Error("expected slots on the final day of the range")
	}

	outside := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	if slots := GenerateSlots(restaurant, []*model.Sitting{sitting}, outside); len(slots) != 0 {
		t.Errorf("expected no slots outside the date range, got %d", len(slots))
	}
}

func TestGenerateSlotsIsDeterministic(t *testing.T) {
	restaurant := testRestaurant()
	sittings := []*model.Sitting{fridayDinner()}
	date := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)

	a := GenerateSlots(restaurant, sittings, date)
	b := GenerateSlots(restaurant, sittings, date)

	if len(a) != len(b) {
		t.Fatalf("expected identical slot counts, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Start.Equal(b[i].Start) || !a[i].End.Equal(b[i].End) {
			t.Fatalf("slot %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGenerateSlotsPreservesSittingOrder(t *testing.T) {
	restaurant := testRestaurant()

	lunch := fridayDinner()
	lunch.Name = "Lunch"
	lunch.StartTime = "12:00"
	lunch.MaxDurationMin = intPtr(150)

	dinner := fridayDinner()
	dinner.MaxDurationMin = intPtr(150)

	date := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)

	// Dinner supplied before lunch: slots follow sitting order, no global
	// re-sort.
	slots := GenerateSlots(restaurant, []*model.Sitting{dinner, lunch}, date)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Start.After(slots[1].Start) {
		t.Errorf("expected dinner slot first, got %v then %v", slots[0].Start, slots[1].Start)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	base := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", base, base.Add(time.Hour), base, base.Add(time.Hour), true},
		{"touching", base, base.Add(time.Hour), base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"contained", base, base.Add(3 * time.Hour), base.Add(time.Hour), base.Add(2 * time.Hour), true},
		{"partial", base, base.Add(2 * time.Hour), base.Add(time.Hour), base.Add(3 * time.Hour), true},
		{"disjoint", base, base.Add(time.Hour), base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); got != tc.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOccupiedCoversExcludesInactive(t *testing.T) {
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	bookings := []*model.Booking{
		{Covers: 4, Status: model.StatusBooked, StartTime: start, EndTime: end},
		{Covers: 2, Status: model.StatusConfirmed, StartTime: start, EndTime: end},
		{Covers: 6, Status: model.StatusCancelled, StartTime: start, EndTime: end},
		{Covers: 3, Status: model.StatusNoShow, StartTime: start, EndTime: end},
		{Covers: 5, Status: model.StatusBooked, StartTime: end, EndTime: end.Add(time.Hour)},
	}

	if got := OccupiedCovers(bookings, start, end); got != 6 {
		t.Errorf("expected 6 occupied covers, got %d", got)
	}
}
