package forum

import (
	"time"

	"github.com/trezcool/monitoria/core"
)

// Thread is a forum discussion topic opened by a user.
type Thread struct {
	ID         int       `json:"id" db:"id"`
	AuthorID   string    `json:"author_id" db:"author_id"`
	AuthorName string    `json:"author_name" db:"author_name"`
	Title      string    `json:"title" db:"title"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC

	Replies []Reply `json:"replies,omitempty" db:"-"`
}

// Reply is a single answer inside a Thread.
type Reply struct {
	ID         int       `json:"id" db:"id"`
	ThreadID   int       `json:"thread_id" db:"thread_id"`
	AuthorID   string    `json:"author_id" db:"author_id"`
	AuthorName string    `json:"author_name" db:"author_name"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewThread contains information needed to open a new Thread.
type NewThread struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

func (nt *NewThread) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Body = core.CleanString(nt.Body)
	return core.Validate.Struct(nt)
}

// NewReply contains information needed to answer a Thread.
type NewReply struct {
	Body string `json:"body" validate:"required"`
}

func (nr *NewReply) Validate() error {
	nr.Body = core.CleanString(nr.Body)
	return core.Validate.Struct(nr)
}
