package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/repository"
)

const createWeeklyGoalsTable = `
CREATE TABLE IF NOT EXISTS weekly_goals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	habit TEXT NOT NULL,
	goal INTEGER NOT NULL,
	start_time TEXT NOT NULL DEFAULT '',
	end_time TEXT NOT NULL DEFAULT '',
	week_start_date TEXT NOT NULL,
	day_of_week TEXT NOT NULL,
	date TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0
);
`

// Files written before created_at existed get the column on Init.
var weeklyGoalsColumns = []column{
	{name: "created_at", ddl: "DATETIME"},
}

const createWeeklyGoalsIndex = `CREATE INDEX IF NOT EXISTS idx_weekly_goals_username_date ON weekly_goals(username, date);`

// Older files declare every column nullable.
const selectGoalColumns = `
SELECT id, COALESCE(username, ''), COALESCE(habit, ''), COALESCE(goal, 0),
	COALESCE(start_time, ''), COALESCE(end_time, ''), COALESCE(week_start_date, ''),
	COALESCE(day_of_week, ''), COALESCE(date, ''), COALESCE(completed, 0), created_at
FROM weekly_goals`

type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) repository.GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createWeeklyGoalsTable); err != nil {
		return fmt.Errorf("create weekly_goals table: %w", err)
	}
	if err := addMissingColumns(ctx, r.db, "weekly_goals", weeklyGoalsColumns); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, createWeeklyGoalsIndex); err != nil {
		return fmt.Errorf("create weekly_goals index: %w", err)
	}
	return nil
}

func (r *GoalRepository) Create(ctx context.Context, goal *domain.WeeklyGoal) (int64, error) {
	goal.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO weekly_goals (username, habit, goal, start_time, end_time, week_start_date, day_of_week, date, completed, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.Username,
		goal.Habit,
		goal.GoalMinutes,
		goal.StartTime,
		goal.EndTime,
		goal.WeekStartDate,
		goal.DayOfWeek,
		goal.Date,
		goal.Completed,
		goal.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal last insert id: %w", err)
	}
	goal.ID = id
	return id, nil
}

func (r *GoalRepository) ListByUsername(ctx context.Context, username string) ([]domain.WeeklyGoal, error) {
	return r.list(ctx, selectGoalColumns+`
WHERE username = ?
ORDER BY date ASC, id ASC`, username)
}

func (r *GoalRepository) ListByWeek(ctx context.Context, username, weekStart string) ([]domain.WeeklyGoal, error) {
	return r.list(ctx, selectGoalColumns+`
WHERE username = ? AND week_start_date = ?
ORDER BY date ASC, id ASC`, username, weekStart)
}

func (r *GoalRepository) list(ctx context.Context, query string, args ...any) ([]domain.WeeklyGoal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	goals := []domain.WeeklyGoal{}
	for rows.Next() {
		var (
			goal      domain.WeeklyGoal
			createdAt sql.NullTime
		)
		if err := rows.Scan(
			&goal.ID,
			&goal.Username,
			&goal.Habit,
			&goal.GoalMinutes,
			&goal.StartTime,
			&goal.EndTime,
			&goal.WeekStartDate,
			&goal.DayOfWeek,
			&goal.Date,
			&goal.Completed,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if createdAt.Valid {
			goal.CreatedAt = createdAt.Time
		}
		goals = append(goals, goal)
	}

	return goals, rows.Err()
}

// MarkCompleted sets the completed flag. Unknown ids are not an error.
func (r *GoalRepository) MarkCompleted(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE weekly_goals SET completed = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark goal completed: %w", err)
	}
	return nil
}

// MarkCompletedByOwner is MarkCompleted limited to goals owned by username.
func (r *GoalRepository) MarkCompletedByOwner(ctx context.Context, username string, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE weekly_goals SET completed = 1 WHERE id = ? AND username = ?`, id, username); err != nil {
		return fmt.Errorf("mark goal completed: %w", err)
	}
	return nil
}

// HabitBreakdown groups the user's goals by habit in a single statement, so the
// rows are one consistent snapshot of the table.
func (r *GoalRepository) HabitBreakdown(ctx context.Context, username string) ([]domain.HabitStats, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT COALESCE(habit, ''), COUNT(*), COALESCE(SUM(completed), 0), COALESCE(SUM(goal), 0)
FROM weekly_goals
WHERE username = ?
GROUP BY COALESCE(habit, '')
ORDER BY 1 ASC`, username)
	if err != nil {
		return nil, fmt.Errorf("query habit breakdown: %w", err)
	}
	defer rows.Close()

	habits := []domain.HabitStats{}
	for rows.Next() {
		var h domain.HabitStats
		if err := rows.Scan(&h.Habit, &h.Total, &h.Completed, &h.TotalMinutes); err != nil {
			return nil, fmt.Errorf("scan habit breakdown: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}
