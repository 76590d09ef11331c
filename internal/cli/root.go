package cli

import (
	"strconv"

	"github.com/alecthomas/kong"

	"habit-tracker/internal/config"
)

// Root is the habitctl command grammar.
type Root struct {
	Version    kong.VersionFlag
	AccountsDB string `name:"accounts-db" help:"Accounts database path." env:"HABIT_DATABASE_ACCOUNTSPATH" default:"${accounts_db}" type:"path"`
	GoalsDB    string `name:"goals-db" help:"Goals database path." env:"HABIT_DATABASE_GOALSPATH" default:"${goals_db}" type:"path"`
	WeekStart  string `name:"week-start" help:"First day of the week." env:"HABIT_GOALS_WEEKSTART" default:"${week_start}"`
	BcryptCost int    `name:"bcrypt-cost" help:"bcrypt cost for new passwords." env:"HABIT_AUTH_BCRYPTCOST" default:"${bcrypt_cost}"`
	Verbose    bool   `short:"v" help:"Enable debug logging."`

	Register RegisterCmd `cmd:"" help:"Create a new account."`
	Login    LoginCmd    `cmd:"" help:"Check account credentials."`
	Exists   ExistsCmd   `cmd:"" help:"Check whether an account is registered."`
	Goal     struct {
		Add      GoalAddCmd      `cmd:"" help:"Set a weekly habit goal."`
		List     GoalListCmd     `cmd:"" help:"List habit goals."`
		Complete GoalCompleteCmd `cmd:"" help:"Mark a goal completed."`
	} `cmd:"" help:"Manage habit goals."`
	Stats StatsCmd `cmd:"" help:"Show weekly analysis."`
}

// Options are the kong options shared by main and tests. Flag defaults come from
// the server configuration (config file, .env, HABIT_* variables).
func Options(cfg config.Config) []kong.Option {
	return []kong.Option{
		kong.Name("habitctl"),
		kong.Description("Personal habit tracker: accounts and weekly goals"),
		kong.UsageOnError(),
		kong.Vars{
			"version":     "v0.1.0",
			"accounts_db": cfg.Database.AccountsPath,
			"goals_db":    cfg.Database.GoalsPath,
			"week_start":  cfg.Goals.WeekStart,
			"bcrypt_cost": strconv.Itoa(cfg.Auth.BcryptCost),
		},
	}
}
