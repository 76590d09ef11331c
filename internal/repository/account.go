package repository

import (
	"context"

	"habit-tracker/internal/domain"
)

// AccountRepository persists registered accounts.
type AccountRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, account *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}
