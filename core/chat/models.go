package chat

import (
	"time"

	"github.com/trezcool/monitoria/core"
)

// Message is a direct message between two users.
type Message struct {
	ID          int       `json:"id" db:"id"`
	SenderID    string    `json:"sender_id" db:"sender_id"`
	SenderName  string    `json:"sender_name" db:"sender_name"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Body        string    `json:"body" db:"body"`
	SentAt      time.Time `json:"sent_at" db:"sent_at"` // UTC
}

// NewMessage contains information needed to send a Message.
type NewMessage struct {
	Body string `json:"body" validate:"required,max=2000"`
}

func (nm *NewMessage) Validate() error {
	nm.Body = core.CleanString(nm.Body)
	return core.Validate.Struct(nm)
}
