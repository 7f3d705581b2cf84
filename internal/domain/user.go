// Package domain contains entity without logic, just meta-data and the
// validation rules the chat protocol enforces on names.
package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	MinUsernameLen = 4
	MaxUsernameLen = 10
)

var validate = validator.New()

var usernameRule = fmt.Sprintf("min=%d,max=%d", MinUsernameLen, MaxUsernameLen)

type UserID string

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// The username keeps the case the user typed; Key() is used for lookups.
func NewUser(username string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	id := UserID(uuid.NewString())
	return &User{ID: id, Username: username}, nil
}

// Key is the case-insensitive identity of the user.
func (u *User) Key() string { return UsernameKey(u.Username) }

// ValidateUsername checks the length in characters, not bytes.
func ValidateUsername(name string) error {
	if err := validate.Var(name, usernameRule); err != nil {
		return fmt.Errorf("%w: %q", ErrUsernameLength, name)
	}
	return nil
}

func UsernameKey(name string) string { return strings.ToLower(name) }
