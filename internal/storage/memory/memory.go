// Package memory is an in-process service.Store. It enforces the same keys
// and references as the postgres schema and gives WithTx real rollback by
// running the callback against a copy of the tables.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"tutor-portal/internal/models"
	"tutor-portal/internal/service"

	"github.com/google/uuid"
)

type tables struct {
	users      map[uuid.UUID]models.User
	students   map[uuid.UUID]models.Student
	schedules  map[uuid.UUID]models.Schedule
	rosters    map[uuid.UUID][]uuid.UUID
	attendance map[uuid.UUID]models.Attendance
	notes      map[uuid.UUID]models.TeacherNote
	materials  map[uuid.UUID]models.Material
	books      map[uuid.UUID]models.Book
	loans      map[uuid.UUID]models.Loan
	news       map[uuid.UUID]models.News
}

func newTables() *tables {
	return &tables{
		users:      make(map[uuid.UUID]models.User),
		students:   make(map[uuid.UUID]models.Student),
		schedules:  make(map[uuid.UUID]models.Schedule),
		rosters:    make(map[uuid.UUID][]uuid.UUID),
		attendance: make(map[uuid.UUID]models.Attendance),
		notes:      make(map[uuid.UUID]models.TeacherNote),
		materials:  make(map[uuid.UUID]models.Material),
		books:      make(map[uuid.UUID]models.Book),
		loans:      make(map[uuid.UUID]models.Loan),
		news:       make(map[uuid.UUID]models.News),
	}
}

func (t *tables) clone() *tables {
	rosters := make(map[uuid.UUID][]uuid.UUID, len(t.rosters))
	for id, r := range t.rosters {
		rosters[id] = append([]uuid.UUID(nil), r...)
	}

	return &tables{
		users:      maps.Clone(t.users),
		students:   maps.Clone(t.students),
		schedules:  maps.Clone(t.schedules),
		rosters:    rosters,
		attendance: maps.Clone(t.attendance),
		notes:      maps.Clone(t.notes),
		materials:  maps.Clone(t.materials),
		books:      maps.Clone(t.books),
		loans:      maps.Clone(t.loans),
		news:       maps.Clone(t.news),
	}
}

var _ service.Store = (*Store)(nil)

type Store struct {
	repo

	mu sync.RWMutex
	db *tables
}

func New() *Store {
	s := &Store{db: newTables()}
	s.repo = repo{store: s}
	return s
}

// WithTx holds the write lock for the whole callback, so transactions are
// serialized. The copy replaces the live tables only when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(repo service.Repository) error) error {
	const op = "storage.memory.WithTx"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.db.clone()
	if err := fn(repo{store: s, tx: tx}); err != nil {
		return err
	}

	s.db = tx
	return nil
}

func (s *Store) Close() error {
	return nil
}

// repo reads and writes the live tables under the store lock, or the
// transaction's copy when tx is set.
type repo struct {
	store *Store
	tx    *tables
}

func (r repo) read(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return fn(r.store.db)
}

func (r repo) write(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return fn(r.store.db)
}
