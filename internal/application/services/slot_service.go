package services

import (
	"iter"
	"time"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
)

// SlotService generates candidate booking slots for a doctor over the
// booking horizon. It is a pure function of its inputs and keeps no state.
type SlotService struct{}

// NewSlotService creates a new slot service
func NewSlotService() *SlotService {
	return &SlotService{}
}

// Days returns the candidate slots per day as a lazy, restartable
// sequence of (day index, slots) pairs. Day 0 is now's calendar day.
func (s *SlotService) Days(wh entities.WorkingHours, horizonDays, slotMinutes int, now time.Time) iter.Seq2[int, []entities.Slot] {
	return func(yield func(int, []entities.Slot) bool) {
		for i := 0; i < horizonDays; i++ {
			day := now.AddDate(0, 0, i)
			closing := time.Date(day.Year(), day.Month(), day.Day(), wh.ClosingHour, 0, 0, 0, day.Location())

			var start time.Time
			if i == 0 {
				start = firstSlotToday(wh, slotMinutes, now)
			} else {
				start = time.Date(day.Year(), day.Month(), day.Day(), wh.OpeningHour, 0, 0, 0, day.Location())
			}

			var slots []entities.Slot
			step := time.Duration(slotMinutes) * time.Minute
			for t := start; t.Before(closing); t = t.Add(step) {
				slots = append(slots, entities.Slot{Start: t, End: t.Add(step)})
			}

			if !yield(i, slots) {
				return
			}
		}
	}
}

// Generate materializes the full horizon at once.
func (s *SlotService) Generate(wh entities.WorkingHours, horizonDays, slotMinutes int, now time.Time) []entities.DaySlots {
	result := make([]entities.DaySlots, 0, horizonDays)
	for i, slots := range s.Days(wh, horizonDays, slotMinutes, now) {
		day := now.AddDate(0, 0, i)
		result = append(result, entities.DaySlots{
			DayIndex: i,
			Date:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
			Slots:    slots,
		})
	}
	return result
}

// firstSlotToday rounds now forward to the next bookable boundary: past
// the half-granularity mark the next hour, otherwise the half-hour mark,
// never earlier than opening. A start at or past closing simply leaves
// today without slots.
func firstSlotToday(wh entities.WorkingHours, slotMinutes int, now time.Time) time.Time {
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())

	var start time.Time
	if now.Minute() > slotMinutes/2 {
		start = hourStart.Add(time.Hour)
	} else {
		start = hourStart.Add(time.Duration(slotMinutes) * time.Minute)
	}

	opening := time.Date(now.Year(), now.Month(), now.Day(), wh.OpeningHour, 0, 0, 0, now.Location())
	if start.Before(opening) {
		start = opening
	}

	return start
}
