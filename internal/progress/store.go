package progress

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/kv"
	"go.uber.org/zap"
)

const StorageKey = "mindmaze_progress"

// Store owns the progress Record. The in-memory copy is authoritative for
// the running process; persistence is best effort and failures are logged.
type Store struct {
	mu  sync.Mutex
	kv  kv.Store
	log *zap.Logger
	rec Record
}

func NewStore(store kv.Store, log *zap.Logger) *Store {
	return &Store{kv: store, log: log.Named("progress"), rec: DefaultRecord()}
}

// Load reads the record from storage and makes it current. Empty or
// unreadable storage yields the default record.
func (s *Store) Load(ctx context.Context) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(ctx)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		rec = DefaultRecord()
	case err != nil:
		s.log.Warn("progress unreadable, using defaults", zap.Error(err))
		rec = DefaultRecord()
	}
	s.rec = rec
	return rec.Clone()
}

// Save merges r into the current and stored records and persists the result.
// Levels and best values already recorded are never dropped.
func (s *Store) Save(ctx context.Context, r Record) Record {
	incoming := r.sanitize()
	return s.mutate(ctx, func(cur Record) Record {
		return merge(cur, incoming)
	})
}

// RecordVictory unlocks the next level of d and raises the best time and
// score for (d, level). It returns the updated record.
func (s *Store) RecordVictory(ctx context.Context, d engine.Difficulty, level, timeLeft, score int) Record {
	return s.mutate(ctx, func(r Record) Record {
		r = r.withUnlocked(d, engine.NextLevel(level))
		return r.withBest(Key(d, level), timeLeft, score)
	})
}

// UnlockLevel adds level to the unlocked set of d.
func (s *Store) UnlockLevel(ctx context.Context, level int, d engine.Difficulty) Record {
	return s.mutate(ctx, func(r Record) Record {
		return r.withUnlocked(d, level)
	})
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

// mutate does read-merge-write: whatever storage holds is merged into the
// in-memory record before fn runs, so neither side can lose progress.
func (s *Store) mutate(ctx context.Context, fn func(Record) Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.rec
	if stored, err := s.read(ctx); err == nil {
		base = merge(base, stored)
	} else if !errors.Is(err, kv.ErrNotFound) {
		s.log.Debug("merge skipped, storage unreadable", zap.Error(err))
	}

	s.rec = fn(base)
	s.write(ctx, s.rec)
	return s.rec.Clone()
}

func (s *Store) read(ctx context.Context) (Record, error) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, err
	}
	return rec.sanitize(), nil
}

func (s *Store) write(ctx context.Context, r Record) {
	data, err := json.Marshal(r)
	if err != nil {
		s.log.Warn("encode progress", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		s.log.Warn("persist progress failed, keeping in-memory record", zap.Error(err))
	}
}
