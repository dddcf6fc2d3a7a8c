package util

import (
	"testing"
	"time"
)

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			"regular month",
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"clamps jan 31 to feb 28",
			time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"leap year february",
			time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"no clamp needed two months out",
			time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 2,
			time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			"crosses year boundary",
			time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC), 3,
			time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonthsClamped(tt.start, tt.months)
			if !got.Equal(tt.expected) {
				t.Errorf("AddMonthsClamped(%s, %d) = %s, want %s",
					tt.start.Format("2006-01-02"), tt.months,
					got.Format("2006-01-02"), tt.expected.Format("2006-01-02"))
			}
		})
	}
}

func TestMorningOf(t *testing.T) {
	afternoon := time.Date(2026, 8, 30, 16, 45, 12, 0, time.UTC)
	morning := MorningOf(afternoon)

	expected := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	if !morning.Equal(expected) {
		t.Errorf("MorningOf = %s, want %s", morning, expected)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 8, 30, 0, 1, 0, 0, time.UTC)
	c := time.Date(2026, 8, 31, 0, 1, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("Expected same day for two times on 2026-08-30")
	}
	if SameDay(a, c) {
		t.Error("Expected different days for 2026-08-30 and 2026-08-31")
	}
}

func TestStartOfDay(t *testing.T) {
	now := time.Date(2026, 8, 30, 16, 45, 12, 345, time.UTC)
	start := StartOfDay(now)

	expected := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if !start.Equal(expected) {
		t.Errorf("StartOfDay = %s, want %s", start, expected)
	}
}
