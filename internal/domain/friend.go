package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
)

// FriendRequest rows are never deleted; the only transition is
// pending -> accepted.
type FriendRequest struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	// Joined fields
	Sender    *User `json:"sender,omitempty"`
	Recipient *User `json:"recipient,omitempty"`
}

// Friendship is derived exclusively from accepted requests and stores the
// pair in canonical order (user1 < user2).
type Friendship struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}
