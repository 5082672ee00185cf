// Package cli implements the administrative command-line tool: database
// setup and seeding, user registration, login checks and user listing.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/fhirmeds/fhirmeds/internal/auth"
	"github.com/fhirmeds/fhirmeds/internal/config"
	"github.com/fhirmeds/fhirmeds/internal/logging"
	"github.com/fhirmeds/fhirmeds/internal/orm"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	engine *orm.Engine
	users  *auth.Service
	in     *bufio.Reader
	out    io.Writer
}

// NewApp opens the database named by the configured DSN and wires the
// engine and the user service on top of it. The dialect is picked from the
// DSN: postgres:// URLs go through pgx, everything else through sqlite.
func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	dialect := orm.DialectForDSN(cfg.DatabaseDSN)

	db, err := sql.Open(dialect.DriverName(), cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	engine := orm.NewEngine(orm.NewExecutor(db, dialect, log), log)

	return &App{
		config: cfg,
		log:    log,
		db:     db,
		engine: engine,
		users:  auth.NewService(engine, cfg, log),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run dispatches the first non-flag argument as a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd := ""
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			// a flag given as "-d value" carries its value in the next slot
			if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		cmd = arg
		break
	}

	switch cmd {
	case "setup":
		return a.Setup(ctx)
	case "seed":
		return a.Seed(ctx)
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "users":
		return a.Users(ctx)
	case "":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "usage: fhirmeds [flags] <command>")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "commands:")
	fmt.Fprintln(a.out, "  setup     create the database tables")
	fmt.Fprintln(a.out, "  seed      create tables and insert demo data")
	fmt.Fprintln(a.out, "  register  interactively register a new user")
	fmt.Fprintln(a.out, "  login     verify credentials and print an access token")
	fmt.Fprintln(a.out, "  users     list registered users")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "flags:")
	fmt.Fprintln(a.out, "  -d dsn    database DSN (default file:fhirmeds.db)")
	fmt.Fprintln(a.out, "  -s key    token signing secret")
	fmt.Fprintln(a.out, "  -t min    token validity in minutes")
	fmt.Fprintln(a.out, "  -c file   JSON config file")
}
