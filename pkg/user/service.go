package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coursehub/pkg/audit"
	"coursehub/pkg/password"
	"coursehub/pkg/token"
)

type ServiceInterface interface {
	Signup(ctx context.Context, form SignupForm) (int64, error)
	Login(ctx context.Context, email, password, ip string) (*LoginResult, error)
	Profile(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) error
	ListUsers(ctx context.Context) ([]*User, error)
}

type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

type Service struct {
	Repo   Repository
	Hasher Hasher
	Tokens token.Issuer
	Audit  audit.Recorder
	Logger *slog.Logger
	Now    func() time.Time
}

func NewService(repo Repository, hasher Hasher, tokens token.Issuer, rec audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		Repo:   repo,
		Hasher: hasher,
		Tokens: tokens,
		Audit:  rec,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Signup(ctx context.Context, form SignupForm) (int64, error) {
	form.Email = strings.TrimSpace(form.Email)
	if form.Email == "" || form.Password == "" {
		return 0, ErrInvalidInput
	}

	exist, err := s.Repo.FindByEmail(ctx, form.Email)
	if exist != nil && err == nil {
		return 0, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return 0, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := s.Hasher.Hash(form.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return 0, ErrPasswordTooLong
		}
		return 0, err
	}

	now := s.Now()
	u := &User{
		FullName:       strings.TrimSpace(form.FullName),
		PublicUsername: strings.TrimSpace(form.PublicUsername),
		Email:          form.Email,
		PasswordHash:   hashed,
		CountryCode:    strings.TrimSpace(form.CountryCode),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
		AcceptsTOSAt:   &now,
	}

	// The UNIQUE(email) constraint still catches a concurrent signup that
	// slipped past the lookup above.
	return s.Repo.Insert(ctx, u)
}

// Login checks the credentials and issues a session token. Unknown, inactive
// and wrong-password attempts all surface as ErrInvalidCredentials; the
// distinction only reaches the login activity log.
func (s *Service) Login(ctx context.Context, email, plaintext, ip string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	now := s.Now()
	event := &audit.LoginEvent{Email: email, IP: ip, At: now}

	u, err := s.Repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.record(ctx, event, audit.ReasonUnknownEmail)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	event.UserID = u.ID
	if !u.IsActive {
		s.record(ctx, event, audit.ReasonInactive)
		return nil, ErrInvalidCredentials
	}
	if !s.Hasher.Verify(plaintext, u.PasswordHash) {
		s.record(ctx, event, audit.ReasonBadPassword)
		return nil, ErrInvalidCredentials
	}

	if err := s.Repo.UpdateLastLogin(ctx, u.ID, now, ip); err != nil {
		return nil, err
	}

	tok, err := s.Tokens.Issue(token.Identity{
		UserID:       u.ID,
		Email:        u.Email,
		IsStaff:      u.IsStaff,
		IsInstructor: u.IsInstructor,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	event.Success = true
	s.record(ctx, event, audit.ReasonOK)

	return &LoginResult{Token: tok, User: u.Public()}, nil
}

func (s *Service) record(ctx context.Context, e *audit.LoginEvent, reason string) {
	if s.Audit == nil {
		return
	}
	e.Reason = reason
	if err := s.Audit.Record(ctx, e); err != nil {
		s.Logger.Warn("login event not recorded",
			slog.String("email", e.Email),
			slog.String("reason", reason),
			slog.Any("error", err),
		)
	}
}

func (s *Service) Profile(ctx context.Context, id int64) (*User, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) error {
	p.FullName = strings.TrimSpace(p.FullName)
	p.CountryCode = strings.TrimSpace(p.CountryCode)
	p.Timezone = strings.TrimSpace(p.Timezone)
	return s.Repo.UpdateProfile(ctx, id, p, s.Now())
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.Repo.List(ctx)
}
