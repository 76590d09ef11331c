package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"habit-tracker/internal/config"
	"habit-tracker/internal/repository/sqlite"
	"habit-tracker/internal/service"
	"habit-tracker/internal/session"
)

func setupTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	chdir(t, dir)

	accountsDB, err := sqlite.Open(filepath.Join(dir, "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = accountsDB.Close() })
	goalsDB, err := sqlite.Open(filepath.Join(dir, "goals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = goalsDB.Close() })

	accounts := sqlite.NewAccountRepository(accountsDB)
	require.NoError(t, accounts.Init(ctx))
	goals := sqlite.NewGoalRepository(goalsDB)
	require.NoError(t, goals.Init(ctx))

	out := &bytes.Buffer{}
	return &Context{
		Context:  ctx,
		Accounts: service.NewAccountService(accounts, bcrypt.MinCost),
		Goals:    service.NewGoalService(goals, service.GoalOptions{}),
		Session:  session.New(),
		Out:      out,
		Now:      func() time.Time { return time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC) },
	}, out
}

func run(t *testing.T, appCtx *Context, args ...string) error {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	var root Root
	parser, err := kong.New(&root, append(Options(cfg), kong.Exit(func(int) { t.Fatal("unexpected exit") }))...)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return kctx.Run(appCtx)
}

func TestRegisterAndLoginCommands(t *testing.T) {
	appCtx, out := setupTestContext(t)

	require.NoError(t, run(t, appCtx, "register", "alice", "--password", "Secret123"))
	require.Contains(t, out.String(), "Account alice created")

	err := run(t, appCtx, "register", "alice", "--password", "Other")
	require.ErrorIs(t, err, service.ErrAlreadyExists)

	err = run(t, appCtx, "login", "-u", "alice", "-p", "wrong")
	require.ErrorIs(t, err, errInvalidLogin)
	_, ok := appCtx.Session.Username()
	require.False(t, ok)

	require.NoError(t, run(t, appCtx, "login", "-u", "alice", "-p", "Secret123"))
	require.Contains(t, out.String(), "Welcome alice!")
	name, ok := appCtx.Session.Username()
	require.True(t, ok)
	require.Equal(t, "alice", name)
}

func TestPasswordFromEnvironment(t *testing.T) {
	appCtx, _ := setupTestContext(t)
	t.Setenv("HABITCTL_PASSWORD", "Secret123")

	require.NoError(t, run(t, appCtx, "register", "alice"))
	require.NoError(t, run(t, appCtx, "login", "-u", "alice"))
}

func TestGoalCommands(t *testing.T) {
	appCtx, out := setupTestContext(t)
	require.NoError(t, run(t, appCtx, "register", "alice", "-p", "Secret123"))

	out.Reset()
	require.NoError(t, run(t, appCtx, "goal", "list", "-u", "alice", "-p", "Secret123"))
	require.Contains(t, out.String(), "No goals set")

	require.NoError(t, run(t, appCtx, "goal", "add", "Read", "-u", "alice", "-p", "Secret123", "-m", "30", "--start", "07:00", "--end", "07:30"))
	require.Contains(t, out.String(), "Habit goal 1 saved")

	err := run(t, appCtx, "goal", "add", " ", "-u", "alice", "-p", "Secret123")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)

	out.Reset()
	require.NoError(t, run(t, appCtx, "goal", "list", "-u", "alice", "-p", "Secret123", "-w", "2024-03-11"))
	require.Contains(t, out.String(), "Thursday")
	require.Contains(t, out.String(), "2024-03-14")
	require.Contains(t, out.String(), "07:00 AM - 07:30 AM")
	require.Contains(t, out.String(), "not completed")

	require.NoError(t, run(t, appCtx, "goal", "complete", "1", "-u", "alice", "-p", "Secret123"))
	require.NoError(t, run(t, appCtx, "goal", "complete", "1", "-u", "alice", "-p", "Secret123"))

	out.Reset()
	require.NoError(t, run(t, appCtx, "stats", "-u", "alice", "-p", "Secret123"))
	require.Contains(t, out.String(), "Total Goals:    1")
	require.Contains(t, out.String(), "Completed:      1")
	require.Contains(t, out.String(), "Not Completed:  0")
}

func TestGoalCommandsRequireLogin(t *testing.T) {
	appCtx, _ := setupTestContext(t)

	err := run(t, appCtx, "goal", "add", "Read", "-u", "ghost", "-p", "nope")
	require.ErrorIs(t, err, errInvalidLogin)

	goals, err := appCtx.Goals.ListGoals(context.Background(), "ghost")
	require.NoError(t, err)
	require.Empty(t, goals)
}

func TestStatsEmpty(t *testing.T) {
	appCtx, out := setupTestContext(t)
	require.NoError(t, run(t, appCtx, "register", "alice", "-p", "Secret123"))

	out.Reset()
	require.NoError(t, run(t, appCtx, "stats", "-u", "alice", "-p", "Secret123"))
	require.Contains(t, out.String(), "No data available")
}

func TestExistsCommand(t *testing.T) {
	appCtx, out := setupTestContext(t)

	require.NoError(t, run(t, appCtx, "exists", "alice"))
	require.Contains(t, out.String(), "No account named alice.")

	require.NoError(t, run(t, appCtx, "register", "alice", "-p", "Secret123"))
	out.Reset()
	require.NoError(t, run(t, appCtx, "exists", "alice"))
	require.Contains(t, out.String(), "Account alice exists.")
}

func TestFlagDefaultsFromConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"database:\n  goalspath: custom/goals.db\ngoals:\n  weekstart: sunday\nauth:\n  bcryptcost: 6\n",
	), 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)

	var root Root
	parser, err := kong.New(&root, Options(cfg)...)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"exists", "alice"})
	require.NoError(t, err)
	require.Equal(t, "goals.db", filepath.Base(root.GoalsDB))
	require.Equal(t, "custom", filepath.Base(filepath.Dir(root.GoalsDB)))
	require.Equal(t, "users.db", filepath.Base(root.AccountsDB))
	require.Equal(t, "sunday", root.WeekStart)
	require.Equal(t, 6, root.BcryptCost)

	_, err = parser.Parse([]string{"--week-start", "monday", "exists", "alice"})
	require.NoError(t, err)
	require.Equal(t, "monday", root.WeekStart)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})
}
