package forum

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("thread not found")
)

type (
	Repository interface {
		CreateThread(ctx context.Context, th Thread) (Thread, error)
		QueryAllThreads(ctx context.Context) ([]Thread, error)
		GetThreadByID(ctx context.Context, id int) (Thread, error)
		CreateReply(ctx context.Context, rep Reply) (Reply, error)
		QueryRepliesByThreadID(ctx context.Context, threadID int) ([]Reply, error)
	}

	Service interface {
		CreateThread(ctx context.Context, author user.User, nt NewThread) (Thread, error)
		QueryAll(ctx context.Context) ([]Thread, error)
		GetByID(ctx context.Context, id int) (Thread, error)
		Reply(ctx context.Context, threadID int, author user.User, nr NewReply) (Reply, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateThread(ctx context.Context, author user.User, nt NewThread) (Thread, error) {
	return svc.repo.CreateThread(ctx, Thread{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Title:      nt.Title,
		Body:       nt.Body,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *service) QueryAll(ctx context.Context) ([]Thread, error) {
	return svc.repo.QueryAllThreads(ctx)
}

// GetByID returns a thread with its replies, oldest first.
func (svc *service) GetByID(ctx context.Context, id int) (Thread, error) {
	th, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	replies, err := svc.repo.QueryRepliesByThreadID(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	th.Replies = replies
	return th, nil
}

func (svc *service) Reply(ctx context.Context, threadID int, author user.User, nr NewReply) (Reply, error) {
	th, err := svc.repo.GetThreadByID(ctx, threadID)
	if err != nil {
		return Reply{}, err
	}
	return svc.repo.CreateReply(ctx, Reply{
		ThreadID:   th.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Body:       nr.Body,
		CreatedAt:  time.Now().UTC(),
	})
}
