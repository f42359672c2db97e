// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package namematch implements approximate lookup of free-form card
// names against the canonical name catalog.
//
// The index is trigram-based: every canonical name contributes one
// logical key per `//`-separated component plus one for the full
// name, and each key is findable by the character trigrams it shares
// with the query.  That way "ribbons" finds "cut // ribbons" (and
// remembers that it matched the back half), while "lighning bolt"
// still finds "lightning bolt".
package namematch

import (
	"strings"

	"git.lukeshu.com/cardsheet/lib/containers"
)

// FullName marks a Result whose query matched the entire canonical
// name rather than one component of it.
const FullName = -1

// Result is a successful lookup: the canonical name, and which part
// of it the query matched.
type Result struct {
	// Name is the canonical (lowercase) catalog name, `//`
	// separators included.
	Name string

	// Component is the index of the `//`-separated component that
	// matched, or FullName if the whole name matched.
	Component int
}

// IsBackFace reports whether the query named the back half of a
// multi-face card.
func (r Result) IsBackFace() bool {
	return r.Component >= 1
}

// threshold is the minimum Sørensen-Dice trigram similarity for a
// candidate to count as a match at all.  Below it, Find reports no
// match rather than a wild guess.
const threshold = 0.5

// memoSize bounds the per-Resolver lookup memo.  Decklists repeat
// names (and re-resolve on every edit), so even a small memo gets a
// high hit rate.
const memoSize = 1024

type indexKey struct {
	text      string
	canonical string
	component int
	grams     int
}

// Resolver is an immutable fuzzy-lookup index over a name catalog.
// Build one with New; it is safe for concurrent use.
type Resolver struct {
	keys  []indexKey
	exact map[string]int   // key text -> earliest key id
	index map[string][]int // trigram -> key ids, ascending
	memo  *containers.LRUCache[string, containers.Optional[Result]]
}

// New builds a Resolver over the given canonical names.  The names
// are expected lowercase (the catalog guarantees that); the insertion
// order fixes how ties break, so identical catalogs give identical
// Resolvers.
func New(names []string) *Resolver {
	r := &Resolver{
		exact: make(map[string]int),
		index: make(map[string][]int),
		memo:  containers.NewLRUCache[string, containers.Optional[Result]](memoSize),
	}
	for _, name := range names {
		if components := strings.Split(name, " // "); len(components) > 1 {
			for i, component := range components {
				r.addKey(component, name, i)
			}
		}
		r.addKey(name, name, FullName)
	}
	return r
}

func (r *Resolver) addKey(text, canonical string, component int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	grams := trigrams(text)
	id := len(r.keys)
	r.keys = append(r.keys, indexKey{
		text:      text,
		canonical: canonical,
		component: component,
		grams:     len(grams),
	})
	if _, taken := r.exact[text]; !taken {
		r.exact[text] = id
	}
	for gram := range grams {
		r.index[gram] = append(r.index[gram], id)
	}
}

// Find returns the canonical name best matching the query, or no
// result if nothing is similar enough.  Lookups are deterministic:
// ties go to the earliest catalog entry.
func (r *Resolver) Find(query string) containers.Optional[Result] {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return containers.OptionalNil[Result]()
	}
	return r.memo.GetOrElse(query, func() containers.Optional[Result] {
		return r.find(query)
	})
}

func (r *Resolver) find(query string) containers.Optional[Result] {
	if id, ok := r.exact[query]; ok {
		return containers.OptionalValue(Result{
			Name:      r.keys[id].canonical,
			Component: r.keys[id].component,
		})
	}

	queryGrams := trigrams(query)
	if len(queryGrams) == 0 {
		return containers.OptionalNil[Result]()
	}
	common := make(map[int]int)
	for gram := range queryGrams {
		for _, id := range r.index[gram] {
			common[id]++
		}
	}

	bestID := -1
	bestScore := 0.0
	for id, shared := range common {
		// Sørensen-Dice over the two trigram sets.
		score := 2 * float64(shared) / float64(len(queryGrams)+r.keys[id].grams)
		if score < threshold {
			continue
		}
		if bestID < 0 || score > bestScore || (score == bestScore && id < bestID) {
			bestID = id
			bestScore = score
		}
	}
	if bestID < 0 {
		return containers.OptionalNil[Result]()
	}
	return containers.OptionalValue(Result{
		Name:      r.keys[bestID].canonical,
		Component: r.keys[bestID].component,
	})
}

// trigrams returns the set of distinct character trigrams of s,
// padded with leading/trailing spaces so that short strings and word
// boundaries still produce useful grams.
func trigrams(s string) map[string]struct{} {
	runes := []rune("  " + s + " ")
	grams := make(map[string]struct{}, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}
