package service

import (
	"github.com/venuehub/allocation-api/internal/models"
)

// Heat tiers for the per-slot occupancy display.
const (
	HeatNone    = 0
	HeatLow     = 1
	HeatMedium  = 2
	HeatHigh    = 3
	HeatHighest = 4
)

// scheduleBounds projects a schedule onto minutes since midnight.
// Malformed windows (unparseable or begin >= end) report ok=false.
func scheduleBounds(schedule models.ApplicationEventSchedule) (begin, end int, ok bool) {
	begin, ok = ParseClock(schedule.Begin)
	if !ok {
		return 0, 0, false
	}
	end, ok = ParseClock(schedule.End)
	if !ok {
		return 0, 0, false
	}
	if end == 0 {
		end = minutesPerDay
	}
	if begin >= end {
		return 0, 0, false
	}
	return begin, end, true
}

// slotFits reports whether one slot lies inside the schedule's half-open
// window on the same weekday.
func slotFits(schedule models.ApplicationEventSchedule, slot models.Slot) bool {
	if slot.Day != schedule.Day {
		return false
	}
	begin, end, ok := scheduleBounds(schedule)
	if !ok {
		return false
	}
	minutes := slot.Minutes()
	return minutes >= begin && minutes < end
}

// SomeSlotsFitSchedule reports whether any of the given slot keys falls
// within the schedule's requested window.
func SomeSlotsFitSchedule(schedule models.ApplicationEventSchedule, slotKeys []string) bool {
	for _, key := range slotKeys {
		slot, err := models.ParseSlotKey(key)
		if err != nil {
			continue
		}
		if slotFits(schedule, slot) {
			return true
		}
	}
	return false
}

// SlotEventCount counts the distinct schedules across all events whose
// window intersects any of the slot keys. This is the occupancy shown per
// grid cell.
func SlotEventCount(slotKeys []string, events []models.ApplicationEvent) int {
	seen := make(map[int64]struct{})
	for _, event := range events {
		for _, schedule := range event.Schedules {
			if _, dup := seen[schedule.Pk]; dup {
				continue
			}
			if SomeSlotsFitSchedule(schedule, slotKeys) {
				seen[schedule.Pk] = struct{}{}
			}
		}
	}
	return len(seen)
}

// HeatTier buckets an occupancy count for rendering.
func HeatTier(count int) int {
	switch {
	case count > 10:
		return HeatHighest
	case count > 3:
		return HeatHigh
	case count > 1:
		return HeatMedium
	case count > 0:
		return HeatLow
	default:
		return HeatNone
	}
}

// SlotEvents returns the events owning at least one schedule that intersects
// the given slot keys, preserving input order.
func SlotEvents(slotKeys []string, events []models.ApplicationEvent) []models.ApplicationEvent {
	matched := make([]models.ApplicationEvent, 0)
	for _, event := range events {
		for _, schedule := range event.Schedules {
			if SomeSlotsFitSchedule(schedule, slotKeys) {
				matched = append(matched, event)
				break
			}
		}
	}
	return matched
}

// TimeSlots expands a list of schedules into the flat, deduplicated set of
// slot keys they cover.
func TimeSlots(schedules []models.ApplicationEventSchedule) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, schedule := range schedules {
		for _, key := range ScheduleSlotKeys(schedule.Day, schedule.Begin, schedule.End) {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

// MatchingSchedules filters to schedules whose window covers the ENTIRE
// selection. An empty selection matches nothing.
func MatchingSchedules(selection []string, schedules []models.ApplicationEventSchedule) []models.ApplicationEventSchedule {
	if len(selection) == 0 {
		return nil
	}

	matched := make([]models.ApplicationEventSchedule, 0)
	for _, schedule := range schedules {
		covered := true
		for _, key := range selection {
			slot, err := models.ParseSlotKey(key)
			if err != nil || !slotFits(schedule, slot) {
				covered = false
				break
			}
		}
		if covered {
			matched = append(matched, schedule)
		}
	}
	return matched
}
