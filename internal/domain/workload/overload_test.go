package workload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverloadWeeksLocation(t *testing.T) {
	weekly := Weekly{
		key(2025, 1):  45, // starts Monday 2024-12-30
		key(2025, 11): 40, // full, not overloaded
		key(2025, 12): 60, // starts Monday 2025-03-17
		key(2025, 14): 41, // starts Monday 2025-03-31
	}

	weeks := OverloadWeeks(weekly)
	require.Len(t, weeks, 3)

	assert.Equal(t, date(2024, time.December, 30), weeks[0].WeekStart)
	assert.Equal(t, 2024, weeks[0].Year)
	assert.Equal(t, time.December, weeks[0].Month)
	assert.Equal(t, 6, weeks[0].WeekOfMonth)

	assert.Equal(t, date(2025, time.March, 17), weeks[1].WeekStart)
	assert.Equal(t, time.March, weeks[1].Month)
	assert.Equal(t, 4, weeks[1].WeekOfMonth)
	assert.InDelta(t, 20, weeks[1].Overflow, 1e-9)

	assert.Equal(t, time.March, weeks[2].Month)
	assert.Equal(t, 6, weeks[2].WeekOfMonth)
}

func TestFilterOverloads(t *testing.T) {
	weeks := OverloadWeeks(Weekly{
		key(2025, 10): 50, // 2025-03-03, March week 2
		key(2025, 12): 50, // 2025-03-17, March week 4
		key(2025, 15): 50, // 2025-04-07, April week 2
	})
	require.Len(t, weeks, 3)

	tests := []struct {
		name   string
		filter OverloadFilter
		want   int
	}{
		{"no filter", OverloadFilter{}, 3},
		{"march", OverloadFilter{Month: time.March}, 2},
		{"second week of any month", OverloadFilter{WeekOfMonth: 2}, 2},
		{"march second week", OverloadFilter{Month: time.March, WeekOfMonth: 2}, 1},
		{"other year", OverloadFilter{Year: 2024}, 0},
		{"empty window", OverloadFilter{Month: time.May}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterOverloads(weeks, tc.filter)
			assert.Len(t, got, tc.want)
			assert.NotNil(t, got)
		})
	}
	assert.True(t, OverloadFilter{}.IsZero())
	assert.False(t, OverloadFilter{Month: time.March}.IsZero())
}
