// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskcache

import (
	"context"
	"errors"
	"sync"
)

// MemStore is a Strategy that persists to nothing but its own memory.
// It exists so that the Cache's eviction behavior can be tested
// without touching disk; the call counters and forced-failure knobs
// let tests observe and break each Strategy operation independently.
type MemStore[K comparable, V any] struct {
	PerEntry int64

	mu        sync.Mutex
	persisted map[K]Entry[V]

	LoadCalls  int
	SaveCalls  int
	EvictCalls int

	FailLoad  bool
	FailSave  bool
	FailEvict bool
}

var _ Strategy[string, int] = (*MemStore[string, int])(nil)

var errMemStoreForced = errors.New("memstore: forced failure")

// Name implements Strategy.
func (s *MemStore[K, V]) Name() string {
	return "in-memory"
}

// Load implements Strategy.
func (s *MemStore[K, V]) Load(context.Context) (map[K]Entry[V], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LoadCalls++
	if s.FailLoad {
		return nil, errMemStoreForced
	}
	ret := make(map[K]Entry[V], len(s.persisted))
	for k, v := range s.persisted {
		ret[k] = v
	}
	return ret, nil
}

// Save implements Strategy.
func (s *MemStore[K, V]) Save(_ context.Context, entries map[K]Entry[V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveCalls++
	if s.FailSave {
		return errMemStoreForced
	}
	s.persisted = make(map[K]Entry[V], len(entries))
	for k, v := range entries {
		s.persisted[k] = v
	}
	return nil
}

// EstimateSize implements Strategy.
func (s *MemStore[K, V]) EstimateSize(K, V) int64 {
	if s.PerEntry > 0 {
		return s.PerEntry
	}
	return 1
}

// OnEvict implements Strategy.
func (s *MemStore[K, V]) OnEvict(context.Context, K, V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EvictCalls++
	if s.FailEvict {
		return errMemStoreForced
	}
	return nil
}

// Persisted returns a snapshot of what the last .Save() persisted.
func (s *MemStore[K, V]) Persisted() map[K]Entry[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make(map[K]Entry[V], len(s.persisted))
	for k, v := range s.persisted {
		ret[k] = v
	}
	return ret
}
