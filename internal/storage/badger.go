package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"genovault/internal/model"
)

// BadgerStore persists records in an embedded BadgerDB key-value store.
// Keys are raw 32-byte signatures; values are versioned JSON payloads.
type BadgerStore struct {
	path     string
	inMemory bool

	mu sync.RWMutex
	db *badger.DB
}

func NewBadgerStore(path string) *BadgerStore {
	return &BadgerStore{path: path}
}

// NewInMemoryBadgerStore opens BadgerDB without disk persistence.
func NewInMemoryBadgerStore() *BadgerStore {
	return &BadgerStore{inMemory: true}
}

func (s *BadgerStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	var opts badger.Options
	if s.inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if s.path == "" {
			return errors.New("badger path is required")
		}
		opts = badger.DefaultOptions(s.path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *BadgerStore) Put(_ context.Context, gc *model.GC) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeGC(gc)
	if err != nil {
		return err
	}
	key := gc.Signature
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(key[:], payload)
	})
}

func (s *BadgerStore) Get(_ context.Context, sig model.Signature) (*model.GC, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sig[:])
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	gc, err := DecodeGC(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode genetic code %s: %w", sig, err)
	}
	return gc, true, nil
}

func (s *BadgerStore) Delete(_ context.Context, sig model.Signature) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sig[:])
	})
}

func (s *BadgerStore) Has(_ context.Context, sig model.Signature) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}

	found := false
	err = db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(sig[:])
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (s *BadgerStore) Count(_ context.Context) (int64, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	var n int64
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (s *BadgerStore) Signatures(_ context.Context) ([]model.Signature, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var sigs []model.Signature
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			sig, err := model.SignatureFromBytes(it.Item().Key())
			if err != nil {
				return fmt.Errorf("corrupt signature key: %w", err)
			}
			sigs = append(sigs, sig)
		}
		return nil
	})
	return sigs, err
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BadgerStore) getDB() (*badger.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}
