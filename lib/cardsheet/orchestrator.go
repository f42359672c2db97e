// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cardsheet

import (
	"context"
	"strings"
	"sync"

	"github.com/datawire/dlib/dlog"
	"golang.org/x/sync/singleflight"

	"git.lukeshu.com/cardsheet/lib/catalog"
	"git.lukeshu.com/cardsheet/lib/containers"
	"git.lukeshu.com/cardsheet/lib/deck"
	"git.lukeshu.com/cardsheet/lib/diskcache"
	"git.lukeshu.com/cardsheet/lib/namematch"
	"git.lukeshu.com/cardsheet/lib/scryfall"
)

// Orchestrator is the top-level façade: it owns the fetcher, the
// catalogs, the resolver, and the caches, and exposes the
// decklist-to-image-sequence pipeline.
//
// An Orchestrator is safe for concurrent use; in particular the
// background loader and foreground calls may interleave freely (the
// fetcher serializes their network traffic).
type Orchestrator struct {
	client *scryfall.Client
	caches *Caches
	names  *catalog.Names
	sets   *catalog.Sets

	// searchGroup and imageGroup collapse concurrent misses for
	// the same key into one network fetch.
	searchGroup singleflight.Group
	imageGroup  singleflight.Group

	resolverMu sync.Mutex
	resolver   *namematch.Resolver
}

// New creates an Orchestrator caching under cacheDir.  metrics may be
// nil.
func New(ctx context.Context, client *scryfall.Client, cacheDir string, metrics diskcache.Metrics) *Orchestrator {
	return &Orchestrator{
		client: client,
		caches: NewCaches(ctx, cacheDir, metrics),
		names:  catalog.NewNames(client, cacheDir, 0),
		sets:   catalog.NewSets(client, cacheDir, 0),
	}
}

// Caches exposes the underlying caches (for stats and tests).
func (o *Orchestrator) Caches() *Caches { return o.caches }

// Client exposes the underlying fetcher (for its call history).
func (o *Orchestrator) Client() *scryfall.Client { return o.client }

// Resolver returns the fuzzy name resolver, building it from the name
// catalog on first use.
func (o *Orchestrator) Resolver(ctx context.Context) (*namematch.Resolver, error) {
	o.resolverMu.Lock()
	defer o.resolverMu.Unlock()
	if o.resolver == nil {
		names, err := o.names.Get(ctx, false)
		if err != nil {
			return nil, err
		}
		o.resolver = namematch.New(names)
	}
	return o.resolver, nil
}

// RefreshCatalogs re-fetches the name and set-code catalogs,
// bypassing their freshness windows, and rebuilds the resolver.
func (o *Orchestrator) RefreshCatalogs(ctx context.Context) error {
	names, err := o.names.Get(ctx, true)
	if err != nil {
		return err
	}
	if _, err := o.sets.Get(ctx, true); err != nil {
		return err
	}
	o.resolverMu.Lock()
	o.resolver = namematch.New(names)
	o.resolverMu.Unlock()
	return nil
}

// ParseAndResolveDecklist parses decklist text and resolves each
// entry's name against the catalog.  A resolved name is replaced with
// its canonical form; matching the back half of a multi-face name
// forces that entry to BackOnly.  An unresolvable name is left as the
// user typed it, with the global face mode.
func (o *Orchestrator) ParseAndResolveDecklist(ctx context.Context, text string, faceMode scryfall.FaceMode) ([]deck.Entry, error) {
	setCodes, err := o.sets.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	resolver, err := o.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	entries := deck.Parse(text, setCodes, faceMode)
	for i := range entries {
		match := resolver.Find(entries[i].Name)
		if !match.OK {
			dlog.Debugf(ctx, "no catalog match for %q, leaving as-is", entries[i].Name)
			continue
		}
		entries[i].Name = match.Val.Name
		if match.Val.IsBackFace() {
			entries[i].FaceMode = scryfall.BackOnly
		}
	}
	return entries, nil
}

// SearchFor returns every printing of the named card, from the search
// cache when possible.  The cache key is the lowercased name as
// given, before any fuzzy resolution.
func (o *Orchestrator) SearchFor(ctx context.Context, name string) (scryfall.SearchResult, error) {
	key := strings.ToLower(name)
	if result, ok := o.caches.Searches.Get(key); ok {
		o.client.RecordCacheHit(key)
		return result, nil
	}
	o.client.RecordCacheMiss(key)
	result, err, _ := o.searchGroup.Do(key, func() (any, error) {
		if result, ok := o.caches.Searches.Get(key); ok {
			return result, nil
		}
		result, err := o.client.SearchCards(ctx, key)
		if err != nil {
			return scryfall.SearchResult{}, err
		}
		if err := o.caches.Searches.Insert(ctx, key, result); err != nil {
			return scryfall.SearchResult{}, err
		}
		return result, nil
	})
	if err != nil {
		return scryfall.SearchResult{}, err
	}
	//nolint:forcetypeassert // The group's fn only ever returns a SearchResult.
	return result.(scryfall.SearchResult), nil
}

// FetchImage returns the image bytes at url, from the image cache
// when possible.
func (o *Orchestrator) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if img, ok := o.caches.Images.Get(url); ok {
		o.client.RecordCacheHit(url)
		return img, nil
	}
	o.client.RecordCacheMiss(url)
	img, err, _ := o.imageGroup.Do(url, func() (any, error) {
		if img, ok := o.caches.Images.Get(url); ok {
			return img, nil
		}
		img, err := o.client.FetchImage(ctx, url)
		if err != nil {
			return nil, err
		}
		if err := o.caches.Images.Insert(ctx, url, img); err != nil {
			return nil, err
		}
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	//nolint:forcetypeassert // The group's fn only ever returns a []byte.
	return img.([]byte), nil
}

// ResolvedCard is one decklist entry bound to the printing chosen for
// it.
type ResolvedCard struct {
	Card     scryfall.Card
	Multiple int
	FaceMode scryfall.FaceMode
}

// selectPrinting chooses the preferred printing for an entry: the
// first whose name, set, and language all match the entry's
// constraints, else the first printing at all.
func selectPrinting(result scryfall.SearchResult, name string, set, lang containers.Optional[string]) containers.Optional[scryfall.Card] {
	for _, card := range result.Cards {
		if !strings.EqualFold(card.Name, name) {
			continue
		}
		if set.OK && !strings.EqualFold(card.Set, set.Val) {
			continue
		}
		if lang.OK && !strings.EqualFold(card.Language, lang.Val) {
			continue
		}
		return containers.OptionalValue(card)
	}
	if len(result.Cards) > 0 {
		return containers.OptionalValue(result.Cards[0])
	}
	return containers.OptionalNil[scryfall.Card]()
}

// ResolveEntriesToCards searches each entry's name and picks its
// printing.  Entries whose search fails or comes back empty are
// skipped with a log line; the pipeline keeps going.
func (o *Orchestrator) ResolveEntriesToCards(ctx context.Context, entries []deck.Entry) []ResolvedCard {
	resolved := make([]ResolvedCard, 0, len(entries))
	for _, ent := range entries {
		result, err := o.SearchFor(ctx, ent.Name)
		if err != nil {
			dlog.Warnf(ctx, "skipping %q: %v", ent.Name, err)
			continue
		}
		card := selectPrinting(result, ent.Name, ent.Set, ent.Lang)
		if !card.OK {
			dlog.Warnf(ctx, "skipping %q: no printings found", ent.Name)
			continue
		}
		resolved = append(resolved, ResolvedCard{
			Card:     card.Val,
			Multiple: ent.Multiple,
			FaceMode: ent.FaceMode,
		})
	}
	return resolved
}

// ExpandCardsToImageURLs flattens resolved cards into the ordered
// image-URL sequence the PDF composer renders: cards in the order
// given, each repeated Multiple times, each repetition expanded per
// its face mode.  This is the single source of truth for image
// ordering.
func ExpandCardsToImageURLs(cards []ResolvedCard) []string {
	var urls []string
	for _, rc := range cards {
		images := rc.Card.ImagesForFaceMode(rc.FaceMode)
		for i := 0; i < rc.Multiple; i++ {
			urls = append(urls, images...)
		}
	}
	return urls
}

// SaveCaches persists every cache; call it once at process exit.
func (o *Orchestrator) SaveCaches(ctx context.Context) error {
	return o.caches.Save(ctx)
}
