// Package dummydb is an in-memory storage implementation used in tests and
// local development. It is not safe for production use.
package dummydb

import (
	"sync"

	"github.com/trezcool/monitoria/core/chat"
	"github.com/trezcool/monitoria/core/discipline"
	"github.com/trezcool/monitoria/core/forum"
	"github.com/trezcool/monitoria/core/mentorship"
	"github.com/trezcool/monitoria/core/user"
)

type (
	DB struct {
		user       *userTable
		mentorship *mentorshipTable
		discipline *disciplineTable
		forum      *forumTables
		chat       *chatTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	mentorshipTable struct {
		sync.RWMutex
		table   map[int]*mentorship.Record
		pkCount int
	}

	disciplineTable struct {
		sync.RWMutex
		table   map[int]*discipline.Discipline
		pkCount int
	}

	forumTables struct {
		sync.RWMutex
		threads       map[int]*forum.Thread
		replies       map[int]*forum.Reply
		threadPkCount int
		replyPkCount  int
	}

	chatTable struct {
		sync.RWMutex
		table   map[int]*chat.Message
		pkCount int
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		mentorship: &mentorshipTable{table: make(map[int]*mentorship.Record)},
		discipline: &disciplineTable{table: make(map[int]*discipline.Discipline)},
		forum: &forumTables{
			threads: make(map[int]*forum.Thread),
			replies: make(map[int]*forum.Reply),
		},
		chat: &chatTable{table: make(map[int]*chat.Message)},
	}
	return db, nil
}
