package storage

import (
	"context"
	"sync"

	"genovault/internal/model"
)

// MemoryStore keeps records in process memory. It hands out deep copies so
// callers can never alias the stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	records     map[model.Signature]*model.GC
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.records = make(map[model.Signature]*model.GC)
	return nil
}

func (s *MemoryStore) Put(_ context.Context, gc *model.GC) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[gc.Signature] = gc.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sig model.Signature) (*model.GC, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gc, ok := s.records[sig]
	if !ok {
		return nil, false, nil
	}
	return gc.Clone(), true, nil
}

func (s *MemoryStore) Delete(_ context.Context, sig model.Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, sig)
	return nil
}

func (s *MemoryStore) Has(_ context.Context, sig model.Signature) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[sig]
	return ok, nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.records)), nil
}

func (s *MemoryStore) Signatures(_ context.Context) ([]model.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sigs := make([]model.Signature, 0, len(s.records))
	for sig := range s.records {
		sigs = append(sigs, sig)
	}
	return sigs, nil
}
