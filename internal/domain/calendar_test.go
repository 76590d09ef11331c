package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		date  string
		first time.Weekday
		want  string
	}{
		{"thursday with monday start", "2024-03-14", time.Monday, "2024-03-11"},
		{"monday is its own week start", "2024-03-11", time.Monday, "2024-03-11"},
		{"sunday belongs to preceding monday", "2024-03-17", time.Monday, "2024-03-11"},
		{"crosses month boundary", "2024-03-01", time.Monday, "2024-02-26"},
		{"crosses year boundary", "2025-01-01", time.Monday, "2024-12-30"},
		{"sunday start convention", "2024-03-14", time.Sunday, "2024-03-10"},
		{"sunday start on sunday", "2024-03-17", time.Sunday, "2024-03-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := ParseDate(tt.date)
			require.NoError(t, err)
			require.Equal(t, tt.want, WeekStart(date, tt.first).Format(DateLayout))
		})
	}
}

func TestDayOfWeek(t *testing.T) {
	date, err := ParseDate("2024-03-14")
	require.NoError(t, err)
	require.Equal(t, "Thursday", DayOfWeek(date))
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("14/03/2024")
	require.Error(t, err)

	d, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	require.Equal(t, time.February, d.Month())
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("")
	require.NoError(t, err)
	require.Equal(t, time.Monday, d)

	d, err = ParseWeekday("Sunday")
	require.NoError(t, err)
	require.Equal(t, time.Sunday, d)

	d, err = ParseWeekday("sat")
	require.NoError(t, err)
	require.Equal(t, time.Saturday, d)

	_, err = ParseWeekday("someday")
	require.Error(t, err)
}

func TestNormalizeClock(t *testing.T) {
	tests := map[string]string{
		"07:30 AM": "07:30 AM",
		"7:30 am":  "07:30 AM",
		"19:05":    "07:05 PM",
		"00:00":    "12:00 AM",
		"12:15":    "12:15 PM",
		"9:00PM":   "09:00 PM",
		"":         "",
	}
	for in, want := range tests {
		got, err := NormalizeClock(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := NormalizeClock("25:00")
	require.Error(t, err)
}

func TestEmptyGoalStats(t *testing.T) {
	stats := EmptyGoalStats()
	require.True(t, stats.Empty)
	require.Zero(t, stats.Total)
	require.NotNil(t, stats.ByStatus)
	require.Empty(t, stats.Habits)
}

func TestSummarizeHabits(t *testing.T) {
	require.Equal(t, EmptyGoalStats(), SummarizeHabits(nil))

	habits := []HabitStats{
		{Habit: "Read", Total: 2, Completed: 2, TotalMinutes: 40},
		{Habit: "Run", Total: 2, Completed: 0, TotalMinutes: 60},
	}
	stats := SummarizeHabits(habits)
	require.False(t, stats.Empty)
	require.Equal(t, 4, stats.Total)
	require.Equal(t, 2, stats.Completed)
	require.Equal(t, 2, stats.NotCompleted)
	require.Equal(t, map[GoalStatus]int{GoalStatusCompleted: 2, GoalStatusNotCompleted: 2}, stats.ByStatus)
	require.InDelta(t, 0.5, stats.CompletionRate, 1e-9)
	require.Equal(t, habits, stats.Habits)

	stats = SummarizeHabits([]HabitStats{{Habit: "Read", Total: 1, Completed: 1}})
	require.Equal(t, map[GoalStatus]int{GoalStatusCompleted: 1}, stats.ByStatus)
	require.Equal(t, 1.0, stats.CompletionRate)
}
