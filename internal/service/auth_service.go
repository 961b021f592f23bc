package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

const defaultAccountName = "Personal"

// defaultGroups are created for every new user, in this order.
var defaultGroups = []model.Group{
	{Name: "My Day", Color: "#0078D4"},
	{Name: "Important", Color: "#D13438"},
	{Name: "Planned", Color: "#00B7C3"},
	{Name: "Tasks", Color: "#8764B8"},
}

// RegisterInput is the data submitted by the registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthService registers users and verifies their credentials.
type AuthService struct {
	users  *repository.UserRepository
	hasher PasswordHasher
	// dummyHash is verified against when the email is unknown so that both
	// failure paths do the same amount of work.
	dummyHash string
}

func NewAuthService(users *repository.UserRepository, hasher PasswordHasher) (*AuthService, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &AuthService{users: users, hasher: hasher, dummyHash: dummy}, nil
}

// Register creates the user together with its default account and groups.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
	}
	accounts := []model.Account{{Name: defaultAccountName, IsDefault: true}}
	groups := make([]model.Group, len(defaultGroups))
	copy(groups, defaultGroups)

	if err := s.users.CreateWithSeed(ctx, &user, accounts, groups); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("register user: %w", err)
	}
	return &user, nil
}

// Verify returns the user for a valid email/password pair. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Verify(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		_, _ = s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// LinkTelegram sets the chat that receives reminders; nil unlinks it.
func (s *AuthService) LinkTelegram(ctx context.Context, userID uint, chatID *int64) error {
	return s.users.SetTelegramChat(ctx, userID, chatID)
}
