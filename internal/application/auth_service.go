package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	repo "github.com/oksasatya/go-diagram-workspace/internal/domain/repository"
	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
	"github.com/oksasatya/go-diagram-workspace/pkg/mailer"
	tpl "github.com/oksasatya/go-diagram-workspace/pkg/mailer/templates"
	"github.com/oksasatya/go-diagram-workspace/pkg/validation"
)

// AuthService checks credentials and registers accounts.
type AuthService struct {
	Users  repo.UserRepository
	Roles  repo.RoleRepository
	Logger *logrus.Logger

	// Publisher receives welcome email jobs; nil disables them.
	Publisher JobPublisher
	AppName   string

	cost      int
	dummyHash string
}

func NewAuthService(users repo.UserRepository, roles repo.RoleRepository, bcryptCost int, logger *logrus.Logger) (*AuthService, error) {
	// Unknown usernames are compared against this hash so both failure paths
	// cost one bcrypt comparison at the configured cost.
	dummy, err := helpers.HashPassword("dummy-password-for-timing", bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		Users:     users,
		Roles:     roles,
		Logger:    logger,
		cost:      bcryptCost,
		dummyHash: dummy,
	}, nil
}

// Authenticate validates username/password and returns a fresh principal.
// Unknown user and wrong password are the same errs.ErrAuthentication.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*entity.Principal, error) {
	// usernames are stored trimmed by Register
	u, err := s.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		helpers.CompareHashAndPassword(s.dummyHash, password)
		return nil, errs.ErrAuthentication
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, errs.ErrAuthentication
	}
	return u.Principal(), nil
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,uname"`
	Email    string `json:"email" validate:"required,mail"`
	Password string `json:"password" validate:"required,pwd"`
}

// Register creates an account with the USER role. It never logs the caller in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	taken, err := s.Users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &errs.ConflictError{Field: "username"}
	}
	taken, err = s.Users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &errs.ConflictError{Field: "email"}
	}

	role, err := s.Roles.GetByName(ctx, entity.RoleUser)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			cerr := &errs.ConfigurationError{Key: "roles", Reason: "default role USER is not seeded"}
			s.Logger.WithError(cerr).Error("registration aborted")
			return nil, cerr
		}
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        []entity.Role{*role},
	}
	// Create maps a unique violation lost to a concurrent signup to ConflictError.
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	s.enqueueWelcome(ctx, u)
	return u, nil
}

// PromoteToAdmin adds the ADMIN role. Used by the seeder.
func (s *AuthService) PromoteToAdmin(ctx context.Context, userID string) error {
	role, err := s.Roles.GetByName(ctx, entity.RoleAdmin)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return &errs.ConfigurationError{Key: "roles", Reason: "role ADMIN is not seeded"}
		}
		return err
	}
	return s.Users.AddRole(ctx, userID, *role)
}

func (s *AuthService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Publisher == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data: tpl.WelcomeData{
			AppName:      s.AppName,
			Username:     u.Username,
			Email:        u.Email,
			RegisteredAt: u.CreatedAt.UTC().Format(time.RFC1123),
		}.ToMap(),
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Publisher.PublishJSON(c, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}
