// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.lukeshu.com/cardsheet/lib/jsonfile"
)

// JSONStore is a Strategy that stores the entire cache in a single
// JSON document.  Eviction needs no per-entry side effect; the
// removal is reflected at the next save.
type JSONStore[V any] struct {
	filename string
	typeName string
	perEntry int64
}

var _ Strategy[string, int] = (*JSONStore[int])(nil)

const jsonStoreVersion = 1

// NewJSONStore creates a JSONStore writing the named file.  typeName
// is recorded in the document metadata to guard against pointing two
// differently-typed caches at the same file; perEntry is the billed
// size of each entry for the byte budget.
func NewJSONStore[V any](filename, typeName string, perEntry int64) *JSONStore[V] {
	return &JSONStore[V]{
		filename: filename,
		typeName: typeName,
		perEntry: perEntry,
	}
}

type jsonStoreMetadata struct {
	Version   int       `json:"version"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type jsonStoreDocument[V any] struct {
	Entries     map[string]Entry[V] `json:"entries"`
	LastUpdated time.Time           `json:"lastUpdated"`
	Metadata    jsonStoreMetadata   `json:"metadata"`
}

// Name implements Strategy.
func (s *JSONStore[V]) Name() string {
	return fmt.Sprintf("single-json:%s", filepath.Base(s.filename))
}

// Load implements Strategy.
func (s *JSONStore[V]) Load(ctx context.Context) (map[string]Entry[V], error) {
	doc, err := jsonfile.ReadFile[jsonStoreDocument[V]](ctx, s.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Entry[V]), nil
		}
		return nil, err
	}
	if doc.Metadata.Type != s.typeName {
		return nil, fmt.Errorf("cache file %q holds %q entries, not %q",
			s.filename, doc.Metadata.Type, s.typeName)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]Entry[V])
	}
	return doc.Entries, nil
}

// Save implements Strategy.
func (s *JSONStore[V]) Save(_ context.Context, entries map[string]Entry[V]) error {
	if err := os.MkdirAll(filepath.Dir(s.filename), 0o700); err != nil {
		return err
	}
	return jsonfile.WriteFile(s.filename, jsonStoreDocument[V]{
		Entries:     entries,
		LastUpdated: time.Now(),
		Metadata: jsonStoreMetadata{
			Version:   jsonStoreVersion,
			Type:      s.typeName,
			CreatedAt: time.Now(),
		},
	})
}

// EstimateSize implements Strategy.
func (s *JSONStore[V]) EstimateSize(string, V) int64 {
	return s.perEntry
}

// OnEvict implements Strategy.
func (s *JSONStore[V]) OnEvict(context.Context, string, V) error {
	return nil
}
