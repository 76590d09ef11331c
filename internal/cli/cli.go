package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/service"
	"habit-tracker/internal/session"
)

// Context is shared by every habitctl command.
type Context struct {
	context.Context
	Accounts service.AccountService
	Goals    service.GoalService
	Session  *session.Session
	Out      io.Writer
	Now      func() time.Time
}

var errInvalidLogin = errors.New("invalid username or password")

// Credentials authenticates the command's session before it touches goals.
type Credentials struct {
	User     string `short:"u" required:"" help:"Account username."`
	Password string `short:"p" env:"HABITCTL_PASSWORD" help:"Account password."`
}

func (c Credentials) login(ctx *Context) (string, error) {
	ok, err := ctx.Accounts.VerifyLogin(ctx, c.User, c.Password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errInvalidLogin
	}
	ctx.Session.Authenticate(strings.TrimSpace(c.User))
	username, _ := ctx.Session.Username()
	return username, nil
}

type RegisterCmd struct {
	Username string `arg:"" help:"Username to register."`
	Password string `short:"p" env:"HABITCTL_PASSWORD" help:"Password for the new account."`
}

func (c *RegisterCmd) Run(ctx *Context) error {
	if err := ctx.Accounts.Register(ctx, c.Username, c.Password); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Account %s created successfully.\n", strings.TrimSpace(c.Username))
	return nil
}

type LoginCmd struct {
	Credentials `embed:""`
}

func (c *LoginCmd) Run(ctx *Context) error {
	username, err := c.login(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Welcome %s!\n", username)
	return nil
}

type ExistsCmd struct {
	Username string `arg:"" help:"Username to look up."`
}

func (c *ExistsCmd) Run(ctx *Context) error {
	ok, err := ctx.Accounts.Exists(ctx, c.Username)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(ctx.Out, "No account named %s.\n", strings.TrimSpace(c.Username))
		return nil
	}
	fmt.Fprintf(ctx.Out, "Account %s exists.\n", strings.TrimSpace(c.Username))
	return nil
}

type GoalAddCmd struct {
	Credentials `embed:""`

	Habit   string `arg:"" help:"Habit name."`
	Minutes int    `short:"m" help:"Target minutes." default:"1"`
	Start   string `help:"Start time (HH:MM or 03:04 PM)."`
	End     string `help:"End time (HH:MM or 03:04 PM)."`
	Date    string `short:"d" help:"Date (YYYY-MM-DD). Defaults to today."`
}

func (c *GoalAddCmd) Run(ctx *Context) error {
	username, err := c.login(ctx)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = ctx.Now().Format(domain.DateLayout)
	}

	id, err := ctx.Goals.CreateGoal(ctx, service.NewGoal{
		Username:    username,
		Habit:       c.Habit,
		GoalMinutes: c.Minutes,
		StartTime:   c.Start,
		EndTime:     c.End,
		Date:        date,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Habit goal %d saved successfully.\n", id)
	return nil
}

type GoalListCmd struct {
	Credentials `embed:""`

	Week string `short:"w" help:"Only goals in the week containing this date (YYYY-MM-DD)."`
}

func (c *GoalListCmd) Run(ctx *Context) error {
	username, err := c.login(ctx)
	if err != nil {
		return err
	}

	var goals []domain.WeeklyGoal
	if c.Week != "" {
		goals, err = ctx.Goals.ListWeek(ctx, username, c.Week)
	} else {
		goals, err = ctx.Goals.ListGoals(ctx, username)
	}
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Fprintln(ctx.Out, "No goals set for this week.")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHABIT\tMINUTES\tDAY\tDATE\tTIME\tSTATUS")
	for _, g := range goals {
		status := "not completed"
		if g.Completed {
			status = "completed"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			g.ID, g.Habit, g.GoalMinutes, g.DayOfWeek, g.Date, timeRange(g.StartTime, g.EndTime), status)
	}
	return w.Flush()
}

type GoalCompleteCmd struct {
	Credentials `embed:""`

	ID int64 `arg:"" help:"Goal id."`
}

func (c *GoalCompleteCmd) Run(ctx *Context) error {
	username, err := c.login(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Goals.MarkCompletedFor(ctx, username, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Goal %d marked completed.\n", c.ID)
	return nil
}

type StatsCmd struct {
	Credentials `embed:""`
}

func (c *StatsCmd) Run(ctx *Context) error {
	username, err := c.login(ctx)
	if err != nil {
		return err
	}

	stats, err := ctx.Goals.Stats(ctx, username)
	if err != nil {
		return err
	}
	if stats.Empty {
		fmt.Fprintln(ctx.Out, "No data available for analysis.")
		return nil
	}

	fmt.Fprintf(ctx.Out, "Total Goals:    %d\n", stats.Total)
	fmt.Fprintf(ctx.Out, "Completed:      %d\n", stats.Completed)
	fmt.Fprintf(ctx.Out, "Not Completed:  %d\n", stats.NotCompleted)
	fmt.Fprintf(ctx.Out, "Completion:     %.0f%%\n", stats.CompletionRate*100)

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HABIT\tGOALS\tCOMPLETED\tMINUTES")
	for _, h := range stats.Habits {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", h.Habit, h.Total, h.Completed, h.TotalMinutes)
	}
	return w.Flush()
}

func timeRange(start, end string) string {
	if start == "" && end == "" {
		return "-"
	}
	return start + " - " + end
}
