package domain

import (
	"errors"
	"time"
)

var (
	ErrRoomNameTooLong = errors.New("room name too long")
	ErrRoomNameEmpty   = errors.New("room name empty")
)

type RoomName string

// Room is a named group of identities. Members is a set, kept duplicate-free
// by the store's atomic add. Rooms are created lazily and never deleted.
type Room struct {
	Name      RoomName  `json:"name"`
	Members   []UserID  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRoom(name RoomName) (*Room, error) {
	if err := ValidateRoomName(name); err != nil {
		return nil, err
	}
	return &Room{Name: name, CreatedAt: time.Now().UTC()}, nil
}

func (r *Room) HasMember(id UserID) bool {
	for _, m := range r.Members {
		if m == id {
			return true
		}
	}
	return false
}

func ValidateRoomName(name RoomName) error {
	if len(name) == 0 {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return ErrRoomNameTooLong
	}
	return nil
}
