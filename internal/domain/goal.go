package domain

import "time"

// GoalStatus labels a goal by its completion flag.
type GoalStatus string

const (
	GoalStatusCompleted    GoalStatus = "completed"
	GoalStatusNotCompleted GoalStatus = "not_completed"
)

// WeeklyGoal is a single habit target for one date, owned by one username.
type WeeklyGoal struct {
	ID            int64
	Username      string
	Habit         string
	GoalMinutes   int
	StartTime     string
	EndTime       string
	WeekStartDate string
	DayOfWeek     string
	Date          string
	Completed     bool
	CreatedAt     time.Time
}

// Status reports the goal's completion state as a GoalStatus.
func (g WeeklyGoal) Status() GoalStatus {
	if g.Completed {
		return GoalStatusCompleted
	}
	return GoalStatusNotCompleted
}

// HabitStats is the per-habit slice of GoalStats.
type HabitStats struct {
	Habit        string
	Total        int
	Completed    int
	TotalMinutes int
}

// GoalStats aggregates every goal recorded for a user.
type GoalStats struct {
	Total          int
	Completed      int
	NotCompleted   int
	ByStatus       map[GoalStatus]int
	CompletionRate float64
	Habits         []HabitStats
	Empty          bool
}

// EmptyGoalStats is returned for users without any goals.
func EmptyGoalStats() GoalStats {
	return GoalStats{
		ByStatus: map[GoalStatus]int{},
		Habits:   []HabitStats{},
		Empty:    true,
	}
}

// SummarizeHabits totals a per-habit breakdown into GoalStats. Counts by status
// only carry statuses that occur.
func SummarizeHabits(habits []HabitStats) GoalStats {
	stats := EmptyGoalStats()
	for _, h := range habits {
		stats.Total += h.Total
		stats.Completed += h.Completed
	}
	if stats.Total == 0 {
		return stats
	}

	stats.Empty = false
	stats.Habits = habits
	stats.NotCompleted = stats.Total - stats.Completed
	if stats.Completed > 0 {
		stats.ByStatus[GoalStatusCompleted] = stats.Completed
	}
	if stats.NotCompleted > 0 {
		stats.ByStatus[GoalStatusNotCompleted] = stats.NotCompleted
	}
	stats.CompletionRate = float64(stats.Completed) / float64(stats.Total)
	return stats
}
