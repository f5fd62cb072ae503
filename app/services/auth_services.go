package services

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/repositories"
	"github.com/shashiranjanraj/kuman/pkg/auth"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/session"
	"github.com/shashiranjanraj/kuman/pkg/validate"
)

// ErrNotLoggedIn is returned by Whoami without a session.
var ErrNotLoggedIn = errors.New("services: not logged in")

// AuthService is the only writer of the session besides the idle watchdog.
type AuthService struct {
	admin *repositories.AdminRepository
	sess  *session.Manager
}

func NewAuthService(admin *repositories.AdminRepository, sess *session.Manager) *AuthService {
	return &AuthService{admin: admin, sess: sess}
}

// Login validates creds, exchanges them for a token and stores it.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) error {
	if err := validate.Check(creds); err != nil {
		return err
	}
	token, err := s.admin.Login(ctx, creds)
	if err != nil {
		return err
	}
	if err := s.sess.Login(ctx, token); err != nil {
		return err
	}

	if c, err := auth.Inspect(token); err == nil && c.ExpiresWithin(time.Now(), time.Hour) {
		logger.WithCtx(ctx).Warn("auth: token expires within the hour", "subject", c.DisplayName())
	}
	return nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sess.Logout(ctx)
}

// Whoami decodes the stored token.
func (s *AuthService) Whoami() (*auth.Claims, error) {
	tok := s.sess.Token()
	if tok == "" {
		return nil, ErrNotLoggedIn
	}
	return auth.Inspect(tok)
}
