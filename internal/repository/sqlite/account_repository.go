package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/repository"
)

// The users table keeps the layout of existing account files: the bcrypt hash
// lives in the password BLOB column, created_at was added later.
const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	password BLOB
);
`

var usersColumns = []column{
	{name: "created_at", ddl: "DATETIME"},
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return addMissingColumns(ctx, r.db, "users", usersColumns)
}

// Create inserts the account. An existing username is left untouched and
// repository.ErrDuplicate is returned.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password, created_at)
VALUES (?, ?, ?)`,
		account.Username,
		[]byte(account.PasswordHash),
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert account %q: %w", account.Username, repository.ErrDuplicate)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT username, password, created_at
FROM users
WHERE username = ?`,
		username,
	)

	var (
		account   domain.Account
		hash      []byte
		createdAt sql.NullTime
	)
	if err := row.Scan(&account.Username, &hash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	account.PasswordHash = string(hash)
	if createdAt.Valid {
		account.CreatedAt = createdAt.Time
	}
	return &account, nil
}
