// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package deck implements parsing of free-form decklist text into
// structured entries.
package deck

import (
	"regexp"
	"strconv"
	"strings"

	"git.lukeshu.com/cardsheet/lib/containers"
	"git.lukeshu.com/cardsheet/lib/scryfall"
)

// Entry is one line of a decklist: a quantity, a (not yet resolved)
// card name, and optionally a set code or language tag that narrows
// which printing is wanted.
type Entry struct {
	Multiple int
	Name     string
	Set      containers.Optional[string]
	Lang     containers.Optional[string]
	FaceMode scryfall.FaceMode

	// SourceLine is the zero-based index of the input line this
	// entry came from, for aligning UI annotations with the text.
	SourceLine int
}

// languages is every language tag the upstream catalog prints cards
// in; a bracketed code on a decklist line that is one of these is a
// language filter, not a set code.
var languages = containers.NewSet(
	"en", "es", "fr", "de", "it", "pt", "ja", "ko", "ru",
	"zhs", "zht", "he", "la", "grc", "ar", "sa", "ph",
)

// headerLines are line names that introduce a section rather than
// naming a card; they are dropped.
var headerLines = containers.NewSet("deck", "decklist", "sideboard")

var codeRE = regexp.MustCompile(`^[a-z0-9]{2,6}$`)

// Parse splits multi-line decklist text into entries.  Parsing never
// fails: unusable lines are dropped, and an empty or all-header input
// yields an empty list.
//
// Each line is "[qty] name [(code)]": an optional leading integer
// (default 1), the card name (everything up to the first of '(', '[',
// '$', or a tab), and an optional trailing 2-6 alphanumeric code in
// parentheses or brackets.  A code that is a known set code (per
// setCodes) selects a set; a known language tag selects a language;
// anything else is assumed to be a set code we have not heard of.
// Everything is matched case-insensitively and emitted lowercase.
//
// faceMode is stamped on every entry; name resolution may later
// override it for back-face matches.
func Parse(text string, setCodes containers.Set[string], faceMode scryfall.FaceMode) []Entry {
	var entries []Entry
	for lineIdx, line := range strings.Split(text, "\n") {
		ent, ok := parseLine(line, setCodes)
		if !ok {
			continue
		}
		ent.FaceMode = faceMode
		ent.SourceLine = lineIdx
		entries = append(entries, ent)
	}
	return entries
}

func parseLine(line string, setCodes containers.Set[string]) (Entry, bool) {
	rest := strings.TrimSpace(strings.ToLower(line))
	if rest == "" {
		return Entry{}, false
	}

	ent := Entry{Multiple: 1}
	if fields := strings.SplitN(rest, " ", 2); len(fields) == 2 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
			ent.Multiple = n
			rest = strings.TrimSpace(fields[1])
		}
	}

	namePart := rest
	if idx := strings.IndexAny(rest, "([$\t"); idx >= 0 {
		namePart = rest[:idx]
	}
	ent.Name = strings.TrimSpace(namePart)
	if ent.Name == "" || headerLines.Has(ent.Name) {
		return Entry{}, false
	}

	if code, ok := trailingCode(rest); ok {
		if languages.Has(code) && !setCodes.Has(code) {
			ent.Lang = containers.OptionalValue(code)
		} else {
			ent.Set = containers.OptionalValue(code)
		}
	}

	return ent, true
}

// trailingCode extracts a 2-6 alphanumeric code from the last
// "(...)"- or "[...]"-delimited group on the (already lowercased)
// line that holds one; earlier groups (like "(foil)") lose to a later
// code.
func trailingCode(line string) (string, bool) {
	var code string
	var found bool
	rest := line
	for {
		open := strings.IndexAny(rest, "([")
		if open < 0 {
			break
		}
		closer := ")"
		if rest[open] == '[' {
			closer = "]"
		}
		closeIdx := strings.Index(rest[open+1:], closer)
		if closeIdx < 0 {
			break
		}
		if c := strings.TrimSpace(rest[open+1 : open+1+closeIdx]); codeRE.MatchString(c) {
			code, found = c, true
		}
		rest = rest[open+1+closeIdx+1:]
	}
	return code, found
}
