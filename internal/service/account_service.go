package service

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// AccountService manages accounts and keeps exactly one of them default.
type AccountService struct {
	repo *repository.AccountRepository
}

func NewAccountService(repo *repository.AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

// List returns the default account first.
func (s *AccountService) List(ctx context.Context, userID uint) ([]model.Account, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create adds a new, non-default account.
func (s *AccountService) Create(ctx context.Context, userID uint, name string) (*model.Account, error) {
	name, err := requireTitle("name", name)
	if err != nil {
		return nil, err
	}
	account := model.Account{UserID: userID, Name: name}
	if err := s.repo.Create(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SwitchDefault makes accountID the user's only default account. It fails
// with ErrNotFound, changing nothing, if the account belongs to someone else.
func (s *AccountService) SwitchDefault(ctx context.Context, userID, accountID uint) error {
	return s.repo.SetDefault(ctx, userID, accountID)
}
