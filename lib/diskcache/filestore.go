// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/datawire/dlib/dlog"

	"git.lukeshu.com/cardsheet/lib/jsonfile"
)

// FileStore is a Strategy that stores each value in its own file,
// named by the hex SHA-256 of the key, with a sibling
// "cache_metadata.json" enumerating the entries and their timestamps.
//
// The metadata is authoritative for which entries exist, but a
// missing or unreadable value file means the entry is gone; such
// entries are dropped at load time with a warning.
type FileStore struct {
	dir      string
	ext      string
	perEntry int64
}

var _ Strategy[string, []byte] = (*FileStore)(nil)

const fileStoreMetadataName = "cache_metadata.json"

// NewFileStore creates a FileStore writing into dir.  ext is the
// filename extension for value files (with the leading dot).
// perEntry, if positive, is the billed size of each entry for the
// byte budget; if zero, entries are billed at their actual length.
func NewFileStore(dir, ext string, perEntry int64) *FileStore {
	return &FileStore{
		dir:      dir,
		ext:      ext,
		perEntry: perEntry,
	}
}

type fileStoreMetadataEntry struct {
	Filename       string    `json:"filename"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
	SizeBytes      int64     `json:"sizeBytes"`
}

type fileStoreMetadata struct {
	Entries        map[string]fileStoreMetadataEntry `json:"entries"`
	TotalSizeBytes int64                             `json:"totalSizeBytes"`
	LastUpdated    time.Time                         `json:"lastUpdated"`
}

// Name implements Strategy.
func (s *FileStore) Name() string {
	return fmt.Sprintf("file-per-entry:%s", filepath.Base(s.dir))
}

func (s *FileStore) filenameFor(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:]) + s.ext
}

// Load implements Strategy.
func (s *FileStore) Load(ctx context.Context) (map[string]Entry[[]byte], error) {
	meta, err := jsonfile.ReadFile[fileStoreMetadata](ctx, filepath.Join(s.dir, fileStoreMetadataName))
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Entry[[]byte]), nil
		}
		return nil, err
	}
	ret := make(map[string]Entry[[]byte], len(meta.Entries))
	for k, metaEnt := range meta.Entries {
		val, err := os.ReadFile(filepath.Join(s.dir, metaEnt.Filename))
		if err != nil {
			dlog.Warnf(dlog.WithField(ctx, "cardsheet.cache", s.Name()),
				"dropping cache entry with unreadable value file: %v", err)
			continue
		}
		ret[k] = Entry[[]byte]{
			Value:          val,
			CreatedAt:      metaEnt.CreatedAt,
			LastAccessedAt: metaEnt.LastAccessedAt,
		}
	}
	return ret, nil
}

// Save implements Strategy.
//
// Value files are named by key hash, so a value file whose bytes
// already match is left alone rather than rewritten; the metadata is
// always rewritten (atomically).
func (s *FileStore) Save(ctx context.Context, entries map[string]Entry[[]byte]) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	meta := fileStoreMetadata{
		Entries:     make(map[string]fileStoreMetadataEntry, len(entries)),
		LastUpdated: time.Now(),
	}
	for k, ent := range entries {
		filename := s.filenameFor(k)
		fullname := filepath.Join(s.dir, filename)
		if existing, err := os.ReadFile(fullname); err != nil || !bytes.Equal(existing, ent.Value) {
			if err := os.WriteFile(fullname, ent.Value, 0o600); err != nil {
				return err
			}
		}
		meta.Entries[k] = fileStoreMetadataEntry{
			Filename:       filename,
			CreatedAt:      ent.CreatedAt,
			LastAccessedAt: ent.LastAccessedAt,
			SizeBytes:      int64(len(ent.Value)),
		}
		meta.TotalSizeBytes += int64(len(ent.Value))
	}
	return jsonfile.WriteFile(filepath.Join(s.dir, fileStoreMetadataName), meta)
}

// EstimateSize implements Strategy.
func (s *FileStore) EstimateSize(_ string, v []byte) int64 {
	if s.perEntry > 0 {
		return s.perEntry
	}
	return int64(len(v))
}

// OnEvict implements Strategy.
func (s *FileStore) OnEvict(_ context.Context, k string, _ []byte) error {
	err := os.Remove(filepath.Join(s.dir, s.filenameFor(k)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
