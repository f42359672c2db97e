// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package diskcache implements a least-recently-used cache that can
// persist itself through a pluggable storage Strategy.
//
// The cache itself is storage-agnostic; the Strategy decides whether
// entries live in one big JSON document (JSONStore), in one file per
// entry (FileStore), or only in memory (MemStore).
package diskcache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/datawire/dlib/derror"
	"github.com/datawire/dlib/dlog"
)

// Entry is a cached value together with the timestamps that drive
// eviction.  LastAccessedAt is the sole eviction sort key; it is
// updated on every successful lookup.
type Entry[V any] struct {
	Value          V         `json:"value"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// Config bounds a Cache.  A zero MaxEntries or MaxBytes means
// "unlimited"; with both zero the cache never evicts on its own.
type Config struct {
	MaxEntries int
	MaxBytes   int64

	// EagerSave persists through the Strategy after every Insert
	// and Clear; otherwise persistence waits for an explicit
	// .Save().
	EagerSave bool

	// Metrics receives hit/miss/evict counts; nil means no
	// instrumentation.
	Metrics Metrics
}

// Cache is a mapping from K to Entry[V] with least-recently-used
// eviction, loaded from and saved to a Strategy.
//
// A Cache is safe for concurrent use.  Lookups take the write lock
// (they touch LastAccessedAt); that is fine because the workload is
// dominated by misses that go to the network, not by lock contention.
// The lock is never held across Strategy I/O that can block on the
// network, but it is held across Strategy disk I/O.
type Cache[K comparable, V any] struct {
	strategy Strategy[K, V]
	cfg      Config
	metrics  Metrics

	mu      sync.RWMutex
	entries map[K]Entry[V]
	seq     map[K]uint64 // monotonic use-order; min is the LRU victim
	nextSeq uint64
	bytes   int64
}

// New creates a Cache backed by the given Strategy, populating it
// from strategy.Load().  A failed load is not fatal: the cache logs a
// warning and starts empty.
func New[K comparable, V any](ctx context.Context, strategy Strategy[K, V], cfg Config) *Cache[K, V] {
	c := &Cache[K, V]{
		strategy: strategy,
		cfg:      cfg,
		metrics:  cfg.Metrics,
		entries:  make(map[K]Entry[V]),
		seq:      make(map[K]uint64),
	}
	if c.metrics == nil {
		c.metrics = NopMetrics{}
	}
	entries, err := strategy.Load(ctx)
	if err != nil {
		dlog.Warnf(dlog.WithField(ctx, "cardsheet.cache", strategy.Name()),
			"could not load persisted cache, starting empty: %v", err)
		return c
	}
	c.entries = entries
	if c.entries == nil {
		c.entries = make(map[K]Entry[V])
	}
	// Re-derive the use-order from the persisted access times.
	// The tie-break on the key's string rendering just makes the
	// order deterministic; nothing may rely on which way it goes.
	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
		c.bytes += strategy.EstimateSize(k, c.entries[k].Value)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti := c.entries[keys[i]].LastAccessedAt
		tj := c.entries[keys[j]].LastAccessedAt
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	for _, k := range keys {
		c.seq[k] = c.nextSeq
		c.nextSeq++
	}
	return c
}

// Get returns the value for k, touching its LastAccessedAt.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[k]
	if !ok {
		c.metrics.Miss()
		var zero V
		return zero, false
	}
	ent.LastAccessedAt = time.Now()
	c.entries[k] = ent
	c.seq[k] = c.nextSeq
	c.nextSeq++
	c.metrics.Hit()
	return ent.Value, true
}

// Has reports whether k is present, without touching its
// LastAccessedAt and without counting as a hit or miss.
func (c *Cache[K, V]) Has(k K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[k]
	return ok
}

// Insert stores v under k, evicting least-recently-used entries as
// needed to respect Config.MaxEntries and Config.MaxBytes.  If k is
// already present its value is replaced without triggering the
// count-based eviction.  With Config.EagerSave, a failed save is
// returned to the caller (the in-memory insert has still happened).
//
// A value bigger than MaxBytes is still admitted (after evicting
// everything else); pick limits larger than the largest value, or
// accept that such an entry is the next victim.
func (c *Cache[K, V]) Insert(ctx context.Context, k K, v V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.strategy.EstimateSize(k, v)
	if old, exists := c.entries[k]; exists {
		c.bytes -= c.strategy.EstimateSize(k, old.Value)
		delete(c.entries, k)
		delete(c.seq, k)
	} else if c.cfg.MaxEntries > 0 && len(c.entries) >= c.cfg.MaxEntries {
		if err := c.evictOldestLocked(ctx); err != nil {
			return err
		}
	}
	if c.cfg.MaxBytes > 0 {
		for c.bytes+size > c.cfg.MaxBytes && len(c.entries) > 0 {
			if err := c.evictOldestLocked(ctx); err != nil {
				return err
			}
		}
	}

	now := time.Now()
	c.entries[k] = Entry[V]{
		Value:          v,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	c.seq[k] = c.nextSeq
	c.nextSeq++
	c.bytes += size

	if c.cfg.EagerSave {
		return c.strategy.Save(ctx, c.entries)
	}
	return nil
}

// Evict removes k if present, running the Strategy's per-entry
// eviction hook; it reports whether an entry was actually removed.
func (c *Cache[K, V]) Evict(ctx context.Context, k K) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[k]
	if !ok {
		return false, nil
	}
	c.bytes -= c.strategy.EstimateSize(k, ent.Value)
	delete(c.entries, k)
	delete(c.seq, k)
	c.metrics.Evict()
	if err := c.strategy.OnEvict(ctx, k, ent.Value); err != nil {
		return true, err
	}
	return true, nil
}

func (c *Cache[K, V]) evictOldestLocked(ctx context.Context) error {
	var victim K
	var victimSeq uint64
	found := false
	for k, s := range c.seq {
		if !found || s < victimSeq {
			victim, victimSeq, found = k, s, true
		}
	}
	if !found {
		return nil
	}
	ent := c.entries[victim]
	c.bytes -= c.strategy.EstimateSize(victim, ent.Value)
	delete(c.entries, victim)
	delete(c.seq, victim)
	c.metrics.Evict()
	return c.strategy.OnEvict(ctx, victim, ent.Value)
}

// Clear evicts every entry (running the per-entry hook for each),
// then persists the now-empty state.
func (c *Cache[K, V]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs derror.MultiError
	for k, ent := range c.entries {
		c.metrics.Evict()
		if err := c.strategy.OnEvict(ctx, k, ent.Value); err != nil {
			errs = append(errs, err)
		}
	}
	c.entries = make(map[K]Entry[V])
	c.seq = make(map[K]uint64)
	c.bytes = 0
	if err := c.strategy.Save(ctx, c.entries); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Save persists the current state through the Strategy.
func (c *Cache[K, V]) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy.Save(ctx, c.entries)
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats is a point-in-time summary of a Cache.
type Stats struct {
	Count            int
	Bytes            int64
	OldestCreatedAt  time.Time
	NewestAccessedAt time.Time
}

func (c *Cache[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := Stats{
		Count: len(c.entries),
		Bytes: c.bytes,
	}
	for _, ent := range c.entries {
		if ret.OldestCreatedAt.IsZero() || ent.CreatedAt.Before(ret.OldestCreatedAt) {
			ret.OldestCreatedAt = ent.CreatedAt
		}
		if ent.LastAccessedAt.After(ret.NewestAccessedAt) {
			ret.NewestAccessedAt = ent.LastAccessedAt
		}
	}
	return ret
}
