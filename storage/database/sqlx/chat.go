package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/chat"
)

type chatRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *sqlx.DB) chat.Repository {
	return &chatRepository{db: db, q: db}
}

func (repo *chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	query := `INSERT INTO chat_message (sender_id, sender_name, recipient_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := sqlx.GetContext(ctx, repo.q, &msg.ID, query, msg.SenderID, msg.SenderName, msg.RecipientID, msg.Body, msg.SentAt)
	if err != nil {
		return chat.Message{}, core.NewStorageError("creating chat message", err)
	}
	return msg, nil
}

func (repo *chatRepository) QueryConversation(ctx context.Context, userID1, userID2 string) ([]chat.Message, error) {
	query := `SELECT id, sender_id, sender_name, recipient_id, body, sent_at FROM chat_message
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY sent_at, id`
	var msgs []chat.Message
	if err := sqlx.SelectContext(ctx, repo.q, &msgs, query, userID1, userID2); err != nil {
		return nil, core.NewStorageError("querying conversation", err)
	}
	return msgs, nil
}
