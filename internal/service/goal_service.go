package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/storage"
)

// NewGoal carries the caller's input for CreateGoal.
type NewGoal struct {
	Username    string
	Habit       string
	GoalMinutes int
	StartTime   string
	EndTime     string
	Date        string
}

// GoalService coordinates goal level operations backed by a repository.
type GoalService interface {
	CreateGoal(ctx context.Context, in NewGoal) (int64, error)
	ListGoals(ctx context.Context, username string) ([]domain.WeeklyGoal, error)
	ListWeek(ctx context.Context, username, date string) ([]domain.WeeklyGoal, error)
	MarkCompleted(ctx context.Context, id int64) error
	MarkCompletedFor(ctx context.Context, username string, id int64) error
	Stats(ctx context.Context, username string) (domain.GoalStats, error)
	ExportReport(ctx context.Context, username string) (string, error)
	ListReports(ctx context.Context, username string) ([]storage.ObjectInfo, error)
}

// GoalOptions tunes a GoalService. The zero value uses Monday weeks and no report archive.
type GoalOptions struct {
	WeekStart       time.Weekday
	Reports         storage.ReportStore
	ReportKeyPrefix string
	Now             func() time.Time
}

type goalService struct {
	goals repository.GoalRepository
	opts  GoalOptions
}

func NewGoalService(goals repository.GoalRepository, opts GoalOptions) GoalService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.ReportKeyPrefix = strings.Trim(opts.ReportKeyPrefix, "/")
	return &goalService{
		goals: goals,
		opts:  opts,
	}
}

func (s *goalService) CreateGoal(ctx context.Context, in NewGoal) (int64, error) {
	username := strings.TrimSpace(in.Username)
	habit := strings.TrimSpace(in.Habit)
	if username == "" {
		return 0, invalid("username", "please enter a username to continue")
	}
	if habit == "" {
		return 0, invalid("habit", "please enter a habit name")
	}
	if in.GoalMinutes <= 0 {
		return 0, invalid("goal_minutes", "target minutes must be at least 1")
	}
	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return 0, invalid("date", err.Error())
	}
	start, err := domain.NormalizeClock(in.StartTime)
	if err != nil {
		return 0, invalid("start_time", err.Error())
	}
	end, err := domain.NormalizeClock(in.EndTime)
	if err != nil {
		return 0, invalid("end_time", err.Error())
	}

	goal := &domain.WeeklyGoal{
		Username:      username,
		Habit:         habit,
		GoalMinutes:   in.GoalMinutes,
		StartTime:     start,
		EndTime:       end,
		WeekStartDate: domain.WeekStart(date, s.opts.WeekStart).Format(domain.DateLayout),
		DayOfWeek:     domain.DayOfWeek(date),
		Date:          date.Format(domain.DateLayout),
	}

	id, err := s.goals.Create(ctx, goal)
	if err != nil {
		return 0, storageFault("create goal", err)
	}
	return id, nil
}

func (s *goalService) ListGoals(ctx context.Context, username string) ([]domain.WeeklyGoal, error) {
	goals, err := s.goals.ListByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, storageFault("list goals", err)
	}
	return goals, nil
}

// ListWeek returns the user's goals in the week containing date.
func (s *goalService) ListWeek(ctx context.Context, username, date string) ([]domain.WeeklyGoal, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return nil, invalid("week", err.Error())
	}
	weekStart := domain.WeekStart(d, s.opts.WeekStart).Format(domain.DateLayout)

	goals, err := s.goals.ListByWeek(ctx, strings.TrimSpace(username), weekStart)
	if err != nil {
		return nil, storageFault("list week", err)
	}
	return goals, nil
}

func (s *goalService) MarkCompleted(ctx context.Context, id int64) error {
	if err := s.goals.MarkCompleted(ctx, id); err != nil {
		return storageFault("mark completed", err)
	}
	return nil
}

func (s *goalService) MarkCompletedFor(ctx context.Context, username string, id int64) error {
	if err := s.goals.MarkCompletedByOwner(ctx, strings.TrimSpace(username), id); err != nil {
		return storageFault("mark completed", err)
	}
	return nil
}

func (s *goalService) Stats(ctx context.Context, username string) (domain.GoalStats, error) {
	habits, err := s.goals.HabitBreakdown(ctx, strings.TrimSpace(username))
	if err != nil {
		return domain.GoalStats{}, storageFault("habit breakdown", err)
	}
	return domain.SummarizeHabits(habits), nil
}

type reportDocument struct {
	Username    string       `json:"username"`
	GeneratedAt time.Time    `json:"generated_at"`
	Stats       reportStats  `json:"stats"`
	Goals       []reportGoal `json:"goals"`
}

type reportStats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	NotCompleted   int            `json:"not_completed"`
	ByStatus       map[string]int `json:"by_status"`
	CompletionRate float64        `json:"completion_rate"`
}

type reportGoal struct {
	ID          int64  `json:"id"`
	Habit       string `json:"habit"`
	GoalMinutes int    `json:"goal_minutes"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	WeekStart   string `json:"week_start_date"`
	DayOfWeek   string `json:"day_of_week"`
	Date        string `json:"date"`
	Completed   bool   `json:"completed"`
}

// ExportReport archives the user's stats and goals as a JSON document and
// returns its location.
func (s *goalService) ExportReport(ctx context.Context, username string) (string, error) {
	if s.opts.Reports == nil {
		return "", ErrReportsDisabled
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", invalid("username", "please enter a username to continue")
	}

	stats, err := s.Stats(ctx, username)
	if err != nil {
		return "", err
	}
	goals, err := s.ListGoals(ctx, username)
	if err != nil {
		return "", err
	}

	now := s.opts.Now().UTC()
	doc := reportDocument{
		Username:    username,
		GeneratedAt: now,
		Stats: reportStats{
			Total:          stats.Total,
			Completed:      stats.Completed,
			NotCompleted:   stats.NotCompleted,
			ByStatus:       make(map[string]int, len(stats.ByStatus)),
			CompletionRate: stats.CompletionRate,
		},
		Goals: make([]reportGoal, len(goals)),
	}
	for status, n := range stats.ByStatus {
		doc.Stats.ByStatus[string(status)] = n
	}
	for i, g := range goals {
		doc.Goals[i] = reportGoal{
			ID:          g.ID,
			Habit:       g.Habit,
			GoalMinutes: g.GoalMinutes,
			StartTime:   g.StartTime,
			EndTime:     g.EndTime,
			WeekStart:   g.WeekStartDate,
			DayOfWeek:   g.DayOfWeek,
			Date:        g.Date,
			Completed:   g.Completed,
		}
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	key := path.Join(s.reportPrefix(username), fmt.Sprintf("%s-%s.json", now.Format("20060102T150405Z"), uuid.NewString()))
	location, err := s.opts.Reports.PutReport(ctx, key, body)
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	return location, nil
}

func (s *goalService) ListReports(ctx context.Context, username string) ([]storage.ObjectInfo, error) {
	if s.opts.Reports == nil {
		return nil, ErrReportsDisabled
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "please enter a username to continue")
	}
	return s.opts.Reports.ListReports(ctx, s.reportPrefix(username)+"/")
}

func (s *goalService) reportPrefix(username string) string {
	if s.opts.ReportKeyPrefix == "" {
		return username
	}
	return s.opts.ReportKeyPrefix + "/" + username
}
