package service

import (
	"strconv"
	"strings"

	"github.com/venuehub/allocation-api/internal/models"
)

// Default opening window for the weekly allocation grid.
const (
	DefaultFirstHour = 7
	DefaultLastHour  = 23
)

const minutesPerDay = 24 * 60

// BuildTimeGrid produces the 7-day half-hour grid between firstHour and
// lastHour inclusive, each day's slots in ascending time order.
func BuildTimeGrid(firstHour, lastHour int) [][]models.Slot {
	if firstHour < 0 || lastHour > 23 || firstHour > lastHour {
		firstHour, lastHour = DefaultFirstHour, DefaultLastHour
	}

	grid := make([][]models.Slot, 7)
	for day := 0; day < 7; day++ {
		slots := make([]models.Slot, 0, 2*(lastHour-firstHour+1))
		for hour := firstHour; hour <= lastHour; hour++ {
			slots = append(slots,
				models.Slot{Day: day, Hour: hour, Minute: 0},
				models.Slot{Day: day, Hour: hour, Minute: 30},
			)
		}
		grid[day] = slots
	}
	return grid
}

// ScheduleSlotKeys expands a day/time window into the half-hour slot keys it
// covers. Generation starts at the top of the begin hour; when the window
// begins on the half hour the first generated key belongs to the preceding
// cell and is dropped. Malformed windows (begin >= end) yield no keys.
func ScheduleSlotKeys(day int, begin, end string) []string {
	beginMinutes, ok := ParseClock(begin)
	if !ok || day < 0 || day > 6 {
		return nil
	}
	endMinutes, ok := ParseClock(end)
	if !ok {
		return nil
	}
	if endMinutes == 0 {
		endMinutes = minutesPerDay
	}
	if beginMinutes >= endMinutes {
		return nil
	}

	keys := make([]string, 0, (endMinutes-beginMinutes)/models.SlotDuration+1)
	for cursor := (beginMinutes / 60) * 60; cursor < endMinutes; cursor += models.SlotDuration {
		slot := models.Slot{Day: day, Hour: cursor / 60, Minute: cursor % 60}
		keys = append(keys, slot.Key())
	}
	if beginMinutes%60 == models.SlotDuration && len(keys) > 0 {
		keys = keys[1:]
	}
	return keys
}

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Hour 24 with zero minutes is accepted and denotes end-of-day midnight.
func ParseClock(raw string) (int, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	if hour == 24 && minute != 0 {
		return 0, false
	}
	return hour*60 + minute, true
}
