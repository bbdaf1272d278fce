// Package memory is an in-process record store with the same semantics and
// error values as the Postgres repositories. The API server falls back to it
// when no database DSN is configured.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type ticketRow struct {
	seq    int64
	ticket domain.Ticket
}

type commentRow struct {
	seq     int64
	comment domain.Comment
}

type articleRow struct {
	seq     int64
	article domain.KBArticle
}

// Store holds every entity behind one mutex so multi-entity writes are atomic.
type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq int64

	tickets    map[string]*ticketRow
	comments   map[string]*commentRow
	users      map[string]*domain.User
	categories map[string]*domain.KBCategory
	articles   map[string]*articleRow
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		tickets:    make(map[string]*ticketRow),
		comments:   make(map[string]*commentRow),
		users:      make(map[string]*domain.User),
		categories: make(map[string]*domain.KBCategory),
		articles:   make(map[string]*articleRow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s} }

// Comments returns the comment repository view.
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s} }

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Categories returns the KB category repository view.
func (s *Store) Categories() repository.KBCategoryRepository { return &categoryRepo{s} }

// Articles returns the KB article repository view.
func (s *Store) Articles() repository.KBArticleRepository { return &articleRepo{s} }

// Set returns every repository view backed by this store.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Tickets:    s.Tickets(),
		Comments:   s.Comments(),
		Users:      s.Users(),
		Articles:   s.Articles(),
		Categories: s.Categories(),
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: constraint,
	}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           pgerrcode.ForeignKeyViolation,
		Message:        "insert or update violates foreign key constraint",
		ConstraintName: constraint,
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortNewestFirst[T any](rows []T, created func(T) time.Time, seq func(T) int64) {
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := created(rows[i]), created(rows[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return seq(rows[i]) > seq(rows[j])
	})
}

func newID() string {
	return uuid.NewString()
}
