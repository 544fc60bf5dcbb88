// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MaxUsernameLen = 36
	MaxRoomNameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type (
	UserID string
	ConnID string
)

// User is the durable identity behind a username. Conn holds the handle of
// the most recent live connection and is empty while the user is offline,
// so Online == (Conn != "").
type User struct {
	ID        UserID    `json:"id"`
	Username  string    `json:"username"`
	Conn      ConnID    `json:"conn,omitempty"`
	Online    bool      `json:"online"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in stores.
func NewUser(username string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	return &User{
		ID:        UserID(uuid.NewString()),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func ValidateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
