package models

// User is a person who can pay for or share expenses.
// Users are owned by the directory and immutable once created.
type User struct {
	// ID is the unique, stable identifier (UUID format).
	ID string

	// Name is the display name.
	Name string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64
}
