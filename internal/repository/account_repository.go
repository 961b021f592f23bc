package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// AccountRepository manages user accounts and the default flag.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a non-default account.
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	account.IsDefault = false
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// ListByUser returns the default account first, the rest in creation order.
func (r *AccountRepository) ListByUser(ctx context.Context, userID uint) ([]model.Account, error) {
	var accounts []model.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC, id ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// SetDefault makes accountID the only default account of userID.
// Nothing is changed when the account does not belong to the user.
func (r *AccountRepository) SetDefault(ctx context.Context, userID, accountID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Account{}).Where("user_id = ? AND id = ?", userID, accountID).Count(&count).Error; err != nil {
			return fmt.Errorf("find account: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&model.Account{}).Where("user_id = ?", userID).
			Update("is_default", gorm.Expr("id = ?", accountID)).Error; err != nil {
			return fmt.Errorf("switch default account: %w", err)
		}
		return nil
	})
}
