package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/user"
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryConversation returns all messages exchanged between the two
		// users in either direction, oldest first.
		QueryConversation(ctx context.Context, userID1, userID2 string) ([]Message, error)
	}

	Service interface {
		Send(ctx context.Context, sender user.User, recipientID string, nm NewMessage) (Message, error)
		Conversation(ctx context.Context, userID1, userID2 string) ([]Message, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{repo: repo, usrSvc: usrSvc}
}

func (svc *service) Send(ctx context.Context, sender user.User, recipientID string, nm NewMessage) (Message, error) {
	recipient, err := svc.usrSvc.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Message{}, core.NewValidationError(err, core.FieldError{Field: "recipient_id", Error: "unknown recipient"})
		}
		return Message{}, errors.Wrap(err, "finding recipient")
	}
	return svc.repo.CreateMessage(ctx, Message{
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		RecipientID: recipient.ID,
		Body:        nm.Body,
		SentAt:      time.Now().UTC(),
	})
}

func (svc *service) Conversation(ctx context.Context, userID1, userID2 string) ([]Message, error) {
	return svc.repo.QueryConversation(ctx, userID1, userID2)
}
