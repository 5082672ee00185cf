// Package auth implements the password-authentication flow on top of the
// mapping engine: registration inserts a salted, hashed credential; login
// reads the stored row back, recomputes the hash from the submitted password
// and compares in constant time.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fhirmeds/fhirmeds/internal/common"
	"github.com/fhirmeds/fhirmeds/internal/config"
	"github.com/fhirmeds/fhirmeds/internal/cryptox"
	"github.com/fhirmeds/fhirmeds/internal/logging"
	"github.com/fhirmeds/fhirmeds/internal/orm"
	"github.com/fhirmeds/fhirmeds/internal/schema"
)

type Service struct {
	engine        *orm.Engine
	log           logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewService(engine *orm.Engine, cfg *config.Config, log logging.Logger) *Service {
	return &Service{
		engine:        engine,
		log:           log.With("component", "auth"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// CreateSchema ensures the users table exists. Safe to call repeatedly.
func (s *Service) CreateSchema(ctx context.Context) error {
	return s.engine.CreateTable(ctx, schema.Users)
}

// Register creates a new user. The identifier must be unset: new rows get a
// store-assigned id. A username collision surfaces as *orm.DuplicateValueError
// so the caller can reject it without retry.
func (s *Service) Register(ctx context.Context, u *schema.User) error {
	if u.Username == "" {
		return common.ErrorInvalidLoginFormat
	}
	if u.Password == "" {
		return common.ErrorInvalidPasswordFormat
	}
	if u.ID != 0 {
		return fmt.Errorf("registration must not carry an identifier")
	}

	rec := u.Record()
	s.log.Debug(ctx, "registering user", "record", schema.Users.Redact(rec))

	if err := s.engine.Insert(ctx, schema.Users, rec); err != nil {
		return err
	}

	s.log.Info(ctx, "user registered", "username", u.Username)
	return nil
}

// Login verifies the submitted credentials and, on success, returns the
// stored user plus a signed access token. Any lookup failure, unknown
// username included, reads as common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (*schema.User, string, error) {
	u, err := s.getByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "login lookup failed", "error", err.Error())
		}
		return nil, "", common.ErrorUnauthorized
	}

	if !cryptox.VerifyPassword(password, u.Salt, u.Password) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := GenerateToken(u.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.log.Error(ctx, "token generation failed", "error", err.Error())
		return nil, "", common.ErrorInternal
	}

	s.log.Info(ctx, "user logged in", "username", u.Username, "is_admin", u.IsAdmin)
	return u, token, nil
}

// UpdateProfile upserts an existing user's row. The write path recomputes
// salt and hash, so the raw password must be resupplied even when unchanged.
func (s *Service) UpdateProfile(ctx context.Context, u *schema.User) error {
	if u.ID <= 0 {
		return fmt.Errorf("profile update requires an identifier")
	}
	if u.Username == "" {
		return common.ErrorInvalidLoginFormat
	}
	if u.Password == "" {
		return common.ErrorInvalidPasswordFormat
	}

	rec := u.Record()
	s.log.Debug(ctx, "updating profile", "record", schema.Users.Redact(rec))

	return s.engine.Insert(ctx, schema.Users, rec)
}

// GetByID returns one user by identifier, or common.ErrorNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (*schema.User, error) {
	res, err := s.engine.Read(ctx, schema.Users, orm.ByID(schema.Users, id))
	if err != nil {
		return nil, err
	}
	return oneUser(res)
}

// ListUsers returns every user row, in store order.
func (s *Service) ListUsers(ctx context.Context) ([]*schema.User, error) {
	res, err := s.engine.Read(ctx, schema.Users, orm.Filter{})
	if err != nil {
		return nil, err
	}

	users := make([]*schema.User, 0, res.Len())
	for _, rec := range res.All() {
		u, err := schema.UserFromRecord(rec)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Service) getByUsername(ctx context.Context, username string) (*schema.User, error) {
	res, err := s.engine.Read(ctx, schema.Users, orm.ByField("username", username))
	if err != nil {
		return nil, err
	}
	return oneUser(res)
}

func oneUser(res *orm.Result) (*schema.User, error) {
	rec, err := res.One()
	if err != nil {
		var miss *orm.LookupMissError
		if errors.As(err, &miss) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return schema.UserFromRecord(rec)
}
