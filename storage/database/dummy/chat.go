package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/monitoria/core/chat"
)

type chatRepository struct {
	db *chatTable
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) chat.Repository {
	return &chatRepository{db: db.chat}
}

func (repo *chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	msg.ID = repo.db.pkCount
	repo.db.table[msg.ID] = &msg
	return msg, nil
}

func (repo *chatRepository) QueryConversation(ctx context.Context, userID1, userID2 string) ([]chat.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]chat.Message, 0)
	for _, msg := range repo.db.table {
		if (msg.SenderID == userID1 && msg.RecipientID == userID2) ||
			(msg.SenderID == userID2 && msg.RecipientID == userID1) {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.Before(msgs[j].SentAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	return msgs, nil
}
