package domain

import "time"

type MessageID string

// Message is an immutable room message. At is assigned by the log at
// persistence time and carries no per-room monotonicity guarantee across
// concurrent senders.
type Message struct {
	ID       MessageID `json:"id"`
	Room     RoomName  `json:"room"`
	Sender   string    `json:"sender"`
	SenderID UserID    `json:"sender_id"`
	Content  string    `json:"content"`
	At       time.Time `json:"at"`
}
