package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/allocation-api/internal/models"
)

func TestBuildTimeGridSizeAndUniqueKeys(t *testing.T) {
	cases := []struct {
		firstHour int
		lastHour  int
	}{
		{7, 23},
		{8, 8},
		{0, 23},
	}

	for _, tc := range cases {
		grid := BuildTimeGrid(tc.firstHour, tc.lastHour)
		require.Len(t, grid, 7)

		perDay := 2 * (tc.lastHour - tc.firstHour + 1)
		seen := make(map[string]struct{})
		total := 0
		for _, day := range grid {
			assert.Len(t, day, perDay)
			for _, slot := range day {
				seen[slot.Key()] = struct{}{}
				total++
			}
		}
		assert.Equal(t, 7*perDay, total)
		assert.Len(t, seen, total, "keys must be unique")
	}
}

func TestBuildTimeGridInvalidBoundsFallsBack(t *testing.T) {
	grid := BuildTimeGrid(20, 8)
	require.Len(t, grid, 7)
	assert.Len(t, grid[0], 2*(DefaultLastHour-DefaultFirstHour+1))
}

func TestSlotKeyRoundTrip(t *testing.T) {
	slot := models.Slot{Day: 2, Hour: 9, Minute: 0}
	assert.Equal(t, "2-9-00", slot.Key())

	parsed, err := models.ParseSlotKey("2-9-00")
	require.NoError(t, err)
	assert.Equal(t, slot, parsed)

	parsed, err = models.ParseSlotKey("1-14-30")
	require.NoError(t, err)
	assert.Equal(t, models.Slot{Day: 1, Hour: 14, Minute: 30}, parsed)

	_, err = models.ParseSlotKey("7-9-00")
	assert.Error(t, err)
	_, err = models.ParseSlotKey("2-9-15")
	assert.Error(t, err)
	_, err = models.ParseSlotKey("garbage")
	assert.Error(t, err)
}

func TestSlotEndWrapsMidnight(t *testing.T) {
	assert.Equal(t, "09:30", models.Slot{Day: 2, Hour: 9, Minute: 0}.End())
	assert.Equal(t, "10:00", models.Slot{Day: 2, Hour: 9, Minute: 30}.End())
	assert.Equal(t, "00:00", models.Slot{Day: 2, Hour: 23, Minute: 30}.End())
	assert.Equal(t, "00:00:00", models.Slot{Day: 2, Hour: 23, Minute: 30}.EndTime())
}

func TestScheduleSlotKeysTopOfHour(t *testing.T) {
	keys := ScheduleSlotKeys(0, "10:00:00", "12:00:00")
	assert.Equal(t, []string{"0-10-00", "0-10-30", "0-11-00", "0-11-30"}, keys)
}

func TestScheduleSlotKeysDropsLeadingCellOnHalfHourBegin(t *testing.T) {
	keys := ScheduleSlotKeys(0, "10:30:00", "12:00:00")
	assert.Equal(t, []string{"0-10-30", "0-11-00", "0-11-30"}, keys)
}

func TestScheduleSlotKeysMidnightEnd(t *testing.T) {
	keys := ScheduleSlotKeys(6, "23:00:00", "00:00:00")
	assert.Equal(t, []string{"6-23-00", "6-23-30"}, keys)
}

func TestScheduleSlotKeysMalformedWindow(t *testing.T) {
	assert.Nil(t, ScheduleSlotKeys(0, "12:00:00", "10:00:00"))
	assert.Nil(t, ScheduleSlotKeys(0, "12:00:00", "12:00:00"))
	assert.Nil(t, ScheduleSlotKeys(0, "nonsense", "12:00:00"))
	assert.Nil(t, ScheduleSlotKeys(9, "10:00:00", "12:00:00"))
}

func TestParseClock(t *testing.T) {
	minutes, ok := ParseClock("14:30:00")
	require.True(t, ok)
	assert.Equal(t, 14*60+30, minutes)

	minutes, ok = ParseClock("7:00")
	require.True(t, ok)
	assert.Equal(t, 7*60, minutes)

	minutes, ok = ParseClock("24:00")
	require.True(t, ok)
	assert.Equal(t, minutesPerDay, minutes)

	_, ok = ParseClock("24:30")
	assert.False(t, ok)
	_, ok = ParseClock("25:00")
	assert.False(t, ok)
	_, ok = ParseClock("noon")
	assert.False(t, ok)
}
