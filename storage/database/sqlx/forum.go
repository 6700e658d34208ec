package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/forum"
)

type forumRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

var _ forum.Repository = (*forumRepository)(nil)

func NewForumRepository(db *sqlx.DB) forum.Repository {
	return &forumRepository{db: db, q: db}
}

const selectThread = `SELECT id, author_id, author_name, title, body, created_at FROM forum_thread`

func (repo *forumRepository) CreateThread(ctx context.Context, th forum.Thread) (forum.Thread, error) {
	query := `INSERT INTO forum_thread (author_id, author_name, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := sqlx.GetContext(ctx, repo.q, &th.ID, query, th.AuthorID, th.AuthorName, th.Title, th.Body, th.CreatedAt)
	if err != nil {
		return forum.Thread{}, core.NewStorageError("creating thread", err)
	}
	return th, nil
}

func (repo *forumRepository) QueryAllThreads(ctx context.Context) ([]forum.Thread, error) {
	var threads []forum.Thread
	if err := sqlx.SelectContext(ctx, repo.q, &threads, selectThread+` ORDER BY created_at DESC`); err != nil {
		return nil, core.NewStorageError("querying threads", err)
	}
	return threads, nil
}

func (repo *forumRepository) GetThreadByID(ctx context.Context, id int) (forum.Thread, error) {
	var th forum.Thread
	if err := sqlx.GetContext(ctx, repo.q, &th, selectThread+` WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return forum.Thread{}, forum.ErrNotFound
		}
		return forum.Thread{}, core.NewStorageError("getting thread", err)
	}
	return th, nil
}

func (repo *forumRepository) CreateReply(ctx context.Context, rep forum.Reply) (forum.Reply, error) {
	query := `INSERT INTO forum_reply (thread_id, author_id, author_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := sqlx.GetContext(ctx, repo.q, &rep.ID, query, rep.ThreadID, rep.AuthorID, rep.AuthorName, rep.Body, rep.CreatedAt)
	if err != nil {
		return forum.Reply{}, core.NewStorageError("creating reply", err)
	}
	return rep, nil
}

func (repo *forumRepository) QueryRepliesByThreadID(ctx context.Context, threadID int) ([]forum.Reply, error) {
	query := `SELECT id, thread_id, author_id, author_name, body, created_at FROM forum_reply
		WHERE thread_id = $1 ORDER BY created_at, id`
	var replies []forum.Reply
	if err := sqlx.SelectContext(ctx, repo.q, &replies, query, threadID); err != nil {
		return nil, core.NewStorageError("querying replies", err)
	}
	return replies, nil
}
