package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/monitoria/core/forum"
)

type forumRepository struct {
	db *forumTables
}

var _ forum.Repository = (*forumRepository)(nil) // interface compliance check

func NewForumRepository(db *DB) forum.Repository {
	return &forumRepository{db: db.forum}
}

func (repo *forumRepository) CreateThread(ctx context.Context, th forum.Thread) (forum.Thread, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.threadPkCount++
	th.ID = repo.db.threadPkCount
	repo.db.threads[th.ID] = &th
	return th, nil
}

func (repo *forumRepository) QueryAllThreads(ctx context.Context) ([]forum.Thread, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	threads := make([]forum.Thread, 0, len(repo.db.threads))
	for _, th := range repo.db.threads {
		threads = append(threads, *th)
	}
	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].CreatedAt.Equal(threads[j].CreatedAt) {
			return threads[i].CreatedAt.After(threads[j].CreatedAt)
		}
		return threads[i].ID > threads[j].ID
	})
	return threads, nil
}

func (repo *forumRepository) GetThreadByID(ctx context.Context, id int) (forum.Thread, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if th, ok := repo.db.threads[id]; ok {
		return *th, nil
	}
	return forum.Thread{}, forum.ErrNotFound
}

func (repo *forumRepository) CreateReply(ctx context.Context, rep forum.Reply) (forum.Reply, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.replyPkCount++
	rep.ID = repo.db.replyPkCount
	repo.db.replies[rep.ID] = &rep
	return rep, nil
}

func (repo *forumRepository) QueryRepliesByThreadID(ctx context.Context, threadID int) ([]forum.Reply, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	replies := make([]forum.Reply, 0)
	for _, rep := range repo.db.replies {
		if rep.ThreadID == threadID {
			replies = append(replies, *rep)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	return replies, nil
}
