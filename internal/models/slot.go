package models

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotDuration is the grid resolution in minutes.
const SlotDuration = 30

// Slot is one half-hour cell of the weekly allocation grid.
// Day is 0=Monday..6=Sunday; Minute is 0 or 30.
type Slot struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Key returns the canonical string form, e.g. "2-9-00" for Wednesday 09:00.
func (s Slot) Key() string {
	return fmt.Sprintf("%d-%d-%02d", s.Day, s.Hour, s.Minute)
}

// Minutes returns the slot start as minutes since midnight.
func (s Slot) Minutes() int {
	return s.Hour*60 + s.Minute
}

// Begin returns the slot start as "HH:MM".
func (s Slot) Begin() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// End returns the end of the half-open cell as "HH:MM".
// A minute-30 cell ends at the next hour, with hour 23 wrapping to 0 (midnight).
func (s Slot) End() string {
	hour, minute := s.Hour, s.Minute+SlotDuration
	if minute >= 60 {
		minute -= 60
		hour++
	}
	if hour > 23 {
		hour = 0
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// BeginTime returns the slot start as "HH:MM:SS" for decision payloads.
func (s Slot) BeginTime() string {
	return fmt.Sprintf("%02d:%02d:00", s.Hour, s.Minute)
}

// EndTime returns the cell end as "HH:MM:SS", wrapping 24:00 to "00:00:00".
func (s Slot) EndTime() string {
	return s.End() + ":00"
}

// Next returns the slot one half-hour later on the same day.
func (s Slot) Next() Slot {
	next := Slot{Day: s.Day, Hour: s.Hour, Minute: s.Minute + SlotDuration}
	if next.Minute >= 60 {
		next.Minute -= 60
		next.Hour++
	}
	return next
}

// Prev returns the slot one half-hour earlier on the same day.
func (s Slot) Prev() Slot {
	prev := Slot{Day: s.Day, Hour: s.Hour, Minute: s.Minute - SlotDuration}
	if prev.Minute < 0 {
		prev.Minute += 60
		prev.Hour--
	}
	return prev
}

// ParseSlotKey decomposes a canonical key back into a Slot.
func ParseSlotKey(key string) (Slot, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return Slot{}, fmt.Errorf("invalid slot key %q", key)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 0 || day > 6 {
		return Slot{}, fmt.Errorf("invalid slot key day %q", key)
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return Slot{}, fmt.Errorf("invalid slot key hour %q", key)
	}
	minute, err := strconv.Atoi(parts[2])
	if err != nil || (minute != 0 && minute != 30) {
		return Slot{}, fmt.Errorf("invalid slot key minute %q", key)
	}

	return Slot{Day: day, Hour: hour, Minute: minute}, nil
}
