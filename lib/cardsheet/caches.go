// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package cardsheet wires the fetcher, catalogs, resolver, and caches
// into the decklist-to-image-sequence pipeline that the PDF composer
// consumes.
package cardsheet

import (
	"context"
	"path/filepath"

	"github.com/datawire/dlib/derror"

	"git.lukeshu.com/cardsheet/lib/diskcache"
	"git.lukeshu.com/cardsheet/lib/scryfall"
)

const (
	// DefaultImageCacheMaxBytes bounds the on-disk image cache.
	DefaultImageCacheMaxBytes = 1 << 30 // 1GiB

	// DefaultSearchCacheMaxEntries and DefaultSearchCacheMaxBytes
	// bound the search-result cache; search responses are small,
	// so the entry count is what usually binds.
	DefaultSearchCacheMaxEntries = 1000
	DefaultSearchCacheMaxBytes   = 50 << 20 // 50MiB

	// searchSizePerEntry is the billed size of one search result;
	// results vary too much to be worth measuring, so the byte
	// budget is really maxEntries in disguise.
	searchSizePerEntry = DefaultSearchCacheMaxBytes / DefaultSearchCacheMaxEntries

	imageCacheDirName   = "images"
	searchCacheFilename = "search_results_cache.json"
)

// Caches is the pair of persistent LRU caches backing the pipeline:
// raw image bytes keyed by URL, and search results keyed by the
// lowercased card name.
type Caches struct {
	Images   *diskcache.Cache[string, []byte]
	Searches *diskcache.Cache[string, scryfall.SearchResult]
}

// NewCaches opens (or creates) the caches under cacheDir.  metrics
// may be nil.
func NewCaches(ctx context.Context, cacheDir string, metrics diskcache.Metrics) *Caches {
	return &Caches{
		Images: diskcache.New[string, []byte](ctx,
			diskcache.NewFileStore(filepath.Join(cacheDir, imageCacheDirName), ".jpg", 0),
			diskcache.Config{
				MaxBytes: DefaultImageCacheMaxBytes,
				Metrics:  metrics,
			}),
		Searches: diskcache.New[string, scryfall.SearchResult](ctx,
			diskcache.NewJSONStore[scryfall.SearchResult](
				filepath.Join(cacheDir, searchCacheFilename), "SearchResults", searchSizePerEntry),
			diskcache.Config{
				MaxEntries: DefaultSearchCacheMaxEntries,
				MaxBytes:   DefaultSearchCacheMaxBytes,
				Metrics:    metrics,
			}),
	}
}

// Save persists both caches; it keeps going past a failure and
// reports everything that went wrong.
func (c *Caches) Save(ctx context.Context) error {
	var errs derror.MultiError
	if err := c.Images.Save(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.Searches.Save(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
