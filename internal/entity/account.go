package entity

import "time"

// Account is one person able to authenticate. PasswordHash is the bcrypt hash
// and never leaves the repository/service layer. Soft delete only: IsActive
// false excludes the row from every read and from biometric matching, but the
// row stays for enrollment and audit referential integrity.
type Account struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Phone        string    `db:"phone"`
	Address      string    `db:"address"`
	DateOfBirth  time.Time `db:"date_of_birth"`
	ProfilePhoto string    `db:"profile_photo"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// AccountLoginData is what the token middleware stashes in request locals.
type AccountLoginData struct {
	ID       int64
	Email    string
	Username string
}
