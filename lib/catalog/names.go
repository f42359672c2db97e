// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"git.lukeshu.com/cardsheet/lib/scryfall"
	"git.lukeshu.com/cardsheet/lib/slices"
)

const namesFilename = "card_names.json"

// Names is the catalog of every canonical card name, persisted to
// "card_names.json" in the cache directory.
type Names struct {
	client   *scryfall.Client
	filename string
	ttl      time.Duration
}

// NewNames creates a Names catalog caching under cacheDir.  A zero
// ttl means DefaultTTL.
func NewNames(client *scryfall.Client, cacheDir string, ttl time.Duration) *Names {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Names{
		client:   client,
		filename: filepath.Join(cacheDir, namesFilename),
		ttl:      ttl,
	}
}

// Get returns every canonical card name, lowercased and sorted,
// fetching from upstream if the cached snapshot is missing, corrupt,
// or stale.
func (c *Names) Get(ctx context.Context, forceRefresh bool) ([]string, error) {
	doc, err := readThrough(ctx, c.filename, c.ttl, forceRefresh,
		func(ctx context.Context) (scryfall.NameCatalog, error) {
			doc, err := c.client.CardNames(ctx)
			if err != nil {
				return scryfall.NameCatalog{}, err
			}
			for i, name := range doc.Data {
				doc.Data[i] = strings.ToLower(name)
			}
			slices.Sort(doc.Data)
			doc.Date = time.Now().UTC().Format("2006-01-02")
			return doc, nil
		})
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}
