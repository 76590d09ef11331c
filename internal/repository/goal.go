package repository

import (
	"context"

	"habit-tracker/internal/domain"
)

// GoalRepository exposes persistence operations for weekly goals.
type GoalRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, goal *domain.WeeklyGoal) (int64, error)
	ListByUsername(ctx context.Context, username string) ([]domain.WeeklyGoal, error)
	ListByWeek(ctx context.Context, username, weekStart string) ([]domain.WeeklyGoal, error)
	MarkCompleted(ctx context.Context, id int64) error
	MarkCompletedByOwner(ctx context.Context, username string, id int64) error
	HabitBreakdown(ctx context.Context, username string) ([]domain.HabitStats, error)
}
