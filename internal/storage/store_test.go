package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"genovault/internal/graph"
	"genovault/internal/model"
)

func testRecord(sig byte) *model.GC {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	gc := &model.GC{
		VersionedRecord: model.CurrentVersion(),
		Graph: &graph.ConnectionGraph{
			O: []graph.Connection{{Row: graph.RowI, Idx: 0, Typ: graph.TypeInt}},
		},
		CodeDepth:       1,
		CodonDepth:      1,
		NumCodes:        1,
		NumUniqueCodes:  1,
		NumCodons:       1,
		NumUniqueCodons: 1,
		InputTypes:      []graph.EndPointType{graph.TypeInt},
		OutputTypes:     []graph.EndPointType{graph.TypeInt},
		NumInputs:       1,
		NumOutputs:      1,
		ReferenceCount:  2,
		Created:         now,
		Updated:         now,
	}
	gc.Signature[0] = sig
	return gc
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "genovault.db")),
		"badger": NewBadgerStore(filepath.Join(t.TempDir(), "badger")),
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			t.Cleanup(func() {
				_ = CloseIfSupported(store)
			})

			gc := testRecord(0x01)
			if err := store.Put(ctx, gc); err != nil {
				t.Fatalf("put: %v", err)
			}

			loaded, ok, err := store.Get(ctx, gc.Signature)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !ok {
				t.Fatal("expected record")
			}
			if loaded.Signature != gc.Signature || loaded.ReferenceCount != 2 {
				t.Fatalf("unexpected record loaded: %+v", loaded)
			}
			if loaded.Graph == nil || len(loaded.Graph.O) != 1 {
				t.Fatalf("graph did not survive the round trip: %+v", loaded.Graph)
			}

			// Returned records must not alias the stored state.
			loaded.ReferenceCount = 99
			again, _, err := store.Get(ctx, gc.Signature)
			if err != nil {
				t.Fatalf("get again: %v", err)
			}
			if again.ReferenceCount != 2 {
				t.Fatal("mutating a loaded record leaked into the store")
			}

			ok, err = store.Has(ctx, gc.Signature)
			if err != nil || !ok {
				t.Fatalf("has = %v, %v; want true, nil", ok, err)
			}

			if err := store.Put(ctx, testRecord(0x02)); err != nil {
				t.Fatalf("put second: %v", err)
			}
			n, err := store.Count(ctx)
			if err != nil || n != 2 {
				t.Fatalf("count = %d, %v; want 2, nil", n, err)
			}

			sigs, err := store.Signatures(ctx)
			if err != nil {
				t.Fatalf("signatures: %v", err)
			}
			if len(sigs) != 2 {
				t.Fatalf("got %d signatures, want 2", len(sigs))
			}

			if err := store.Delete(ctx, gc.Signature); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := store.Get(ctx, gc.Signature); ok {
				t.Fatal("deleted record still present")
			}
			if ok, _ := store.Has(ctx, gc.Signature); ok {
				t.Fatal("deleted record still reported present")
			}
		})
	}
}

func TestStoreUpsertOverwrites(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			t.Cleanup(func() {
				_ = CloseIfSupported(store)
			})

			gc := testRecord(0x01)
			if err := store.Put(ctx, gc); err != nil {
				t.Fatalf("put: %v", err)
			}
			gc.LostDescendants = 7
			if err := store.Put(ctx, gc); err != nil {
				t.Fatalf("second put: %v", err)
			}

			loaded, _, err := store.Get(ctx, gc.Signature)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if loaded.LostDescendants != 7 {
				t.Fatalf("lost descendants = %d, want 7", loaded.LostDescendants)
			}
			n, _ := store.Count(ctx)
			if n != 1 {
				t.Fatalf("count = %d, want 1", n)
			}
		})
	}
}

func TestCodecRejectsVersionSkew(t *testing.T) {
	gc := testRecord(0x01)
	gc.SchemaVersion = 99

	data, err := EncodeGC(gc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeGC(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("decode = %v, want version mismatch", err)
	}
}

func TestFactory(t *testing.T) {
	if _, err := NewStore("", ""); err != nil {
		t.Fatalf("default backend: %v", err)
	}
	if _, err := NewStore("memory", ""); err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, err := NewStore("sqlite", filepath.Join(t.TempDir(), "x.db")); err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	if _, err := NewStore("badger", t.TempDir()); err != nil {
		t.Fatalf("badger backend: %v", err)
	}
	if _, err := NewStore("papyrus", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestUninitializedStoresFail(t *testing.T) {
	ctx := context.Background()
	sig := model.Signature{0x01}

	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	if _, _, err := sqlite.Get(ctx, sig); err == nil {
		t.Fatal("sqlite get before init must fail")
	}
	badger := NewBadgerStore(filepath.Join(t.TempDir(), "b"))
	if _, _, err := badger.Get(ctx, sig); err == nil {
		t.Fatal("badger get before init must fail")
	}
}
