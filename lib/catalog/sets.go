// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"git.lukeshu.com/cardsheet/lib/containers"
	"git.lukeshu.com/cardsheet/lib/scryfall"
	"git.lukeshu.com/cardsheet/lib/slices"
)

const setsFilename = "set_codes.json"

// setsDocument is the persisted shape of the set-code snapshot.
type setsDocument struct {
	Date  string   `json:"date"`
	Codes []string `json:"codes"`
}

// Sets is the catalog of every set's short code, persisted to
// "set_codes.json" in the cache directory.
type Sets struct {
	client   *scryfall.Client
	filename string
	ttl      time.Duration
}

// NewSets creates a Sets catalog caching under cacheDir.  A zero ttl
// means DefaultTTL.
func NewSets(client *scryfall.Client, cacheDir string, ttl time.Duration) *Sets {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Sets{
		client:   client,
		filename: filepath.Join(cacheDir, setsFilename),
		ttl:      ttl,
	}
}

// Get returns the set of all known set codes, lowercased, fetching
// from upstream if the cached snapshot is missing, corrupt, or stale.
func (c *Sets) Get(ctx context.Context, forceRefresh bool) (containers.Set[string], error) {
	doc, err := readThrough(ctx, c.filename, c.ttl, forceRefresh,
		func(ctx context.Context) (setsDocument, error) {
			codes, err := c.client.SetCodes(ctx)
			if err != nil {
				return setsDocument{}, err
			}
			for i, code := range codes {
				codes[i] = strings.ToLower(code)
			}
			slices.Sort(codes)
			return setsDocument{
				Date:  time.Now().UTC().Format("2006-01-02"),
				Codes: codes,
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return containers.NewSet(doc.Codes...), nil
}
