// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskcache

import (
	"context"
)

// Strategy is how a Cache persists itself.
//
// EstimateSize must be O(1) and stable for a given (k, v); the Cache
// sums it to enforce Config.MaxBytes.  The stock strategies return a
// per-entry constant, which is adequate when entries are of similar
// size (card images all come from the same scanner) but would need
// refinement for heterogeneous blobs.
type Strategy[K comparable, V any] interface {
	// Name returns a diagnostic label for log lines and metrics.
	Name() string

	// Load reconstructs the persisted state.  Returning an error
	// is not fatal to the Cache; it starts empty.
	Load(ctx context.Context) (map[K]Entry[V], error)

	// Save persists the entire current state, replacing whatever
	// was persisted before.
	Save(ctx context.Context, entries map[K]Entry[V]) error

	// EstimateSize returns the billed size of an entry, in bytes.
	EstimateSize(k K, v V) int64

	// OnEvict performs whatever side effects are needed to finish
	// evicting an entry (such as deleting a value file).  It is
	// called after the entry has been removed from the map.
	OnEvict(ctx context.Context, k K, v V) error
}
