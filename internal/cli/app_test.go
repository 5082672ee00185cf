package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirmeds/fhirmeds/internal/auth"
	"github.com/fhirmeds/fhirmeds/internal/config"
	"github.com/fhirmeds/fhirmeds/internal/logging"
	"github.com/fhirmeds/fhirmeds/internal/orm"
)

// newTestApp builds an App on an in-memory database with scripted stdin
// and captured stdout.
func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	engine := orm.NewEngine(orm.NewExecutor(db, orm.SQLiteDialect{}, logger), logger)

	cfg := &config.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Minute,
	}

	out := &bytes.Buffer{}
	return &App{
		config: cfg,
		log:    logger,
		db:     db,
		engine: engine,
		users:  auth.NewService(engine, cfg, logger),
		in:     bufio.NewReader(strings.NewReader(input)),
		out:    out,
	}, out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
}

func TestRun_Setup(t *testing.T) {
	app, out := newTestApp(t, "")
	require.NoError(t, app.Run(context.Background(), []string{"setup"}))
	assert.Contains(t, out.String(), "Tables created.")
}

func TestRun_UnknownCommand(t *testing.T) {
	app, out := newTestApp(t, "")
	err := app.Run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, out.String(), "usage:")
}

func TestRun_NoCommandPrintsUsage(t *testing.T) {
	app, out := newTestApp(t, "")
	require.NoError(t, app.Run(context.Background(), []string{"-d", "file:x.db"}))
	assert.Contains(t, out.String(), "usage:")
}

func TestRegisterAndLoginCommands(t *testing.T) {
	ctx := context.Background()
	stubPassword(t, "Secret123!")

	app, out := newTestApp(t, "carol\nCarol Example\ncarol@example.com\n")
	require.NoError(t, app.Setup(ctx))
	require.NoError(t, app.Register(ctx))
	assert.Contains(t, out.String(), "Success!")

	// same database, fresh input for the login command
	app.in = bufio.NewReader(strings.NewReader("carol\n"))
	out.Reset()
	require.NoError(t, app.Login(ctx))
	assert.Contains(t, out.String(), "Token: ")
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	ctx := context.Background()
	stubPassword(t, "wrong")

	app, out := newTestApp(t, "nobody\n")
	require.NoError(t, app.Setup(ctx))
	require.NoError(t, app.Login(ctx))
	assert.Contains(t, out.String(), "Invalid user name or password.")
}

func TestRegisterCommand_Duplicate(t *testing.T) {
	ctx := context.Background()
	stubPassword(t, "Secret123!")

	app, out := newTestApp(t, "carol\nCarol\nc@example.com\ncarol\nCarol\nc@example.com\n")
	require.NoError(t, app.Setup(ctx))
	require.NoError(t, app.Register(ctx))
	require.NoError(t, app.Register(ctx))
	assert.Contains(t, out.String(), "already taken")
}

func TestSeedAndUsersCommands(t *testing.T) {
	ctx := context.Background()

	app, out := newTestApp(t, "")
	require.NoError(t, app.Seed(ctx))
	assert.Contains(t, out.String(), "Demo data loaded.")

	out.Reset()
	require.NoError(t, app.Users(ctx))
	listing := out.String()
	assert.Contains(t, listing, "admin")
	assert.Contains(t, listing, "demo_user")
	assert.NotContains(t, listing, "demo.user@example.com", "listing must not expose contact details")
}
