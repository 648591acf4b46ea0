package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/position"
	"taskflow-board-api/internal/repository"
)

type publishedEvent struct {
	BoardID uuid.UUID
	Event   string
	Payload interface{}
}

// MockPublisher records every published event
type MockPublisher struct {
	PublishFunc func(ctx context.Context, boardID uuid.UUID, event string, payload interface{}) error

	mu     sync.Mutex
	events []publishedEvent
}

func (m *MockPublisher) Publish(ctx context.Context, boardID uuid.UUID, event string, payload interface{}) error {
	m.mu.Lock()
	m.events = append(m.events, publishedEvent{BoardID: boardID, Event: event, Payload: payload})
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, boardID, event, payload)
	}
	return nil
}

func (m *MockPublisher) Named(event string) []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []publishedEvent
	for _, e := range m.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// failingStore wraps a real store and fails task position writes for one list,
// simulating a storage fault in the middle of a move
type failingStore struct {
	repository.Store
	failList uuid.UUID
}

var errSimulatedWrite = errors.New("simulated write failure")

func (s *failingStore) Tasks() repository.TaskRepository {
	return &failingTaskRepository{TaskRepository: s.Store.Tasks(), failList: s.failList}
}

func (s *failingStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(&failingStore{Store: tx, failList: s.failList})
	})
}

type failingTaskRepository struct {
	repository.TaskRepository
	failList uuid.UUID
}

func (r *failingTaskRepository) SetPositions(ctx context.Context, listID uuid.UUID, order position.Sequence, positions map[uuid.UUID]int) error {
	if listID == r.failList {
		return errSimulatedWrite
	}
	return r.TaskRepository.SetPositions(ctx, listID, order, positions)
}

// retryStore fails the first n transactions with a serialization-style error
type retryStore struct {
	repository.Store
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *retryStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	s.calls++
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return errors.New("database is locked")
	}
	return s.Store.InTx(ctx, fn)
}

// memberFaultStore makes the membership lookup fail with err for the first
// failures transactions
type memberFaultStore struct {
	repository.Store
	err      error
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *memberFaultStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	s.calls++
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	return s.Store.InTx(ctx, func(tx repository.Store) error {
		if !fail {
			return fn(tx)
		}
		return fn(&memberFaultTx{Store: tx, err: s.err})
	})
}

type memberFaultTx struct {
	repository.Store
	err error
}

func (s *memberFaultTx) Members() repository.MemberRepository {
	return &faultyMemberRepository{MemberRepository: s.Store.Members(), err: s.err}
}

type faultyMemberRepository struct {
	repository.MemberRepository
	err error
}

func (r *faultyMemberRepository) FindRole(ctx context.Context, boardID, userID uuid.UUID) (domain.BoardRole, error) {
	return "", r.err
}
