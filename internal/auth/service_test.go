package auth

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/fhirmeds/fhirmeds/internal/common"
	"github.com/fhirmeds/fhirmeds/internal/config"
	"github.com/fhirmeds/fhirmeds/internal/cryptox"
	"github.com/fhirmeds/fhirmeds/internal/logging"
	"github.com/fhirmeds/fhirmeds/internal/orm"
	"github.com/fhirmeds/fhirmeds/internal/schema"
)

func newTestService(t *testing.T) *Service {
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

	s := NewService(engine, cfg, logger)
	require.NoError(t, s.CreateSchema(context.Background()))
	return s
}

func alice() *schema.User {
	return &schema.User{
		Username: "alice",
		Password: "Secret123!",
		FullName: "Alice Example",
		Email:    "alice@example.com",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, alice()))

	u, token, err := s.Login(ctx, "alice", "Secret123!")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEmpty(t, token)

	assert.Equal(t, "alice", u.Username)
	assert.Positive(t, u.ID)
	assert.NotEqual(t, "Secret123!", u.Password, "stored credential must be hashed")
	assert.True(t, cryptox.VerifyPassword("Secret123!", u.Salt, u.Password))

	id, err := UserIDFromToken(token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, alice()))

	_, _, err := s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_UnknownUsername(t *testing.T) {
	s := newTestService(t)

	_, _, err := s.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, alice()))

	err := s.Register(ctx, alice())
	var dup *orm.DuplicateValueError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, schema.Users.Table, dup.Table)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	err := s.Register(ctx, &schema.User{Password: "x"})
	assert.ErrorIs(t, err, common.ErrorInvalidLoginFormat)

	err = s.Register(ctx, &schema.User{Username: "x"})
	assert.ErrorIs(t, err, common.ErrorInvalidPasswordFormat)

	err = s.Register(ctx, &schema.User{ID: 7, Username: "x", Password: "y"})
	assert.Error(t, err)
}

func TestUpdateProfile_RehashesCredential(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, alice()))
	before, _, err := s.Login(ctx, "alice", "Secret123!")
	require.NoError(t, err)

	updated := alice()
	updated.ID = before.ID
	updated.Password = "NewSecret456!"
	updated.Email = "alice@new.example.com"
	require.NoError(t, s.UpdateProfile(ctx, updated))

	_, _, err = s.Login(ctx, "alice", "Secret123!")
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "old password must stop working")

	after, _, err := s.Login(ctx, "alice", "NewSecret456!")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID, "update must not create a second row")
	assert.Equal(t, "alice@new.example.com", after.Email)
	assert.NotEqual(t, before.Salt, after.Salt, "every write draws a fresh salt")
}

func TestUpdateProfile_RequiresID(t *testing.T) {
	s := newTestService(t)

	err := s.UpdateProfile(context.Background(), alice())
	assert.Error(t, err)
}

func TestGetByID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, alice()))
	u, _, err := s.Login(ctx, "alice", "Secret123!")
	require.NoError(t, err)

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = s.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListUsers(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, s.Register(ctx, alice()))
	bob := &schema.User{Username: "bob", Password: "Hunter2!", IsAdmin: true}
	require.NoError(t, s.Register(ctx, bob))

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.True(t, users[1].IsAdmin)
}
