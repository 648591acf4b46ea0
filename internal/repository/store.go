package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Store is the unit of work over every repository.
// Repositories obtained from the Store passed to InTx's callback share one
// transaction; it commits when the callback returns nil and rolls back otherwise.
type Store interface {
	Boards() BoardRepository
	Lists() ListRepository
	Tasks() TaskRepository
	Members() MemberRepository
	Assignments() AssignmentRepository
	Activities() ActivityRepository

	InTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db     *gorm.DB
	txOpts *sql.TxOptions
}

// NewStore creates a Store backed by db. Transactions use the given isolation
// level; sql.LevelDefault leaves the driver default.
func NewStore(db *gorm.DB, isolation sql.IsolationLevel) Store {
	var opts *sql.TxOptions
	if isolation != sql.LevelDefault {
		opts = &sql.TxOptions{Isolation: isolation}
	}
	return &gormStore{db: db, txOpts: opts}
}

func (s *gormStore) Boards() BoardRepository           { return NewBoardRepository(s.db) }
func (s *gormStore) Lists() ListRepository             { return NewListRepository(s.db) }
func (s *gormStore) Tasks() TaskRepository             { return NewTaskRepository(s.db) }
func (s *gormStore) Members() MemberRepository         { return NewMemberRepository(s.db) }
func (s *gormStore) Assignments() AssignmentRepository { return NewAssignmentRepository(s.db) }
func (s *gormStore) Activities() ActivityRepository    { return NewActivityRepository(s.db) }

// InTx runs fn inside a database transaction. Nested calls become savepoints.
func (s *gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, txOpts: s.txOpts})
	}, s.txOpts)
}
