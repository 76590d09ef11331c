package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/repository"
)

// AccountService registers accounts and verifies logins.
type AccountService interface {
	Register(ctx context.Context, username, password string) error
	VerifyLogin(ctx context.Context, username, password string) (bool, error)
	Exists(ctx context.Context, username string) (bool, error)
}

type accountService struct {
	accounts repository.AccountRepository
	cost     int
}

// NewAccountService hashes passwords with the given bcrypt cost; values outside
// bcrypt's range fall back to bcrypt.DefaultCost.
func NewAccountService(accounts repository.AccountRepository, cost int) AccountService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &accountService{
		accounts: accounts,
		cost:     cost,
	}
}

func (s *accountService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username", "please fill in all fields")
	}
	// passwords are taken verbatim; only an empty one is missing
	if password == "" {
		return invalid("password", "please fill in all fields")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return invalid("password", "must be at most 72 bytes")
		}
		return fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyExists
		}
		return storageFault("register", err)
	}
	return nil
}

func (s *accountService) VerifyLogin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, storageFault("verify login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *accountService) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, storageFault("lookup account", err)
	}
}
