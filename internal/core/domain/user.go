package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrUnauthorized    = errors.New("unauthorized access to resource")
	ErrInvalidToken    = errors.New("invalid token")
)

type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Timezone  string    `json:"timezone" db:"timezone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LoadLocation resolves the user's IANA timezone. An empty name is UTC.
func (u *User) LoadLocation() (*time.Location, error) {
	name := strings.TrimSpace(u.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// Location is LoadLocation falling back to UTC for unknown names.
func (u *User) Location() *time.Location {
	loc, err := u.LoadLocation()
	if err != nil {
		return time.UTC
	}
	return loc
}

// AccountStart is the local calendar day the account was created on.
func (u *User) AccountStart() time.Time {
	return CivilDate(u.CreatedAt, u.Location())
}
