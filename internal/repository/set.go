package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Set groups the repositories the services need.
type Set struct {
	Tickets    TicketRepository
	Comments   CommentRepository
	Users      UserRepository
	Articles   KBArticleRepository
	Categories KBCategoryRepository
}

// NewPostgresSet builds every repository over pool.
func NewPostgresSet(pool *pgxpool.Pool) Set {
	return Set{
		Tickets:    NewTicketRepository(pool),
		Comments:   NewCommentRepository(pool),
		Users:      NewUserRepository(pool),
		Articles:   NewKBArticleRepository(pool),
		Categories: NewKBCategoryRepository(pool),
	}
}
