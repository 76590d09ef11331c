package domain

import "time"

// Account is a registered username with its bcrypt password hash.
type Account struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
