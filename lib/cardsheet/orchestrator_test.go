// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cardsheet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lukeshu.com/cardsheet/lib/containers"
	"git.lukeshu.com/cardsheet/lib/deck"
	"git.lukeshu.com/cardsheet/lib/scryfall"
)

// testUpstream is a stand-in for the real catalog API: a fixed name
// catalog, a fixed set list, and per-name printings whose image URLs
// point back at the server itself.
type testUpstream struct {
	srv       *httptest.Server
	names     []string
	sets      []string
	printings map[string][]map[string]any // name -> raw card objects
	imgFetch  atomic.Int64
}

func newTestUpstream(t *testing.T) *testUpstream {
	t.Helper()
	u := &testUpstream{
		names:     []string{"cut // ribbons", "lightning bolt", "memory lapse"},
		sets:      []string{"akh", "bro", "lea", "m21"},
		printings: make(map[string][]map[string]any),
	}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/catalog/card-names":
			writeJSON(t, w, map[string]any{
				"object":       "catalog",
				"total_values": len(u.names),
				"data":         u.names,
			})
		case r.URL.Path == "/sets":
			var sets []map[string]any
			for _, code := range u.sets {
				sets = append(sets, map[string]any{"code": code})
			}
			writeJSON(t, w, map[string]any{"data": sets})
		case r.URL.Path == "/cards/search":
			q := r.URL.Query().Get("q")
			name := strings.Trim(strings.TrimPrefix(q, `name:`), `"`)
			cards := u.printings[name]
			if cards == nil {
				http.Error(w, `{"object":"error","status":404}`, http.StatusNotFound)
				return
			}
			writeJSON(t, w, map[string]any{
				"object":      "list",
				"total_cards": len(cards),
				"data":        cards,
			})
		case strings.HasPrefix(r.URL.Path, "/img/"):
			u.imgFetch.Add(1)
			_, _ = w.Write([]byte("img:" + r.URL.Path))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func writeJSON(t *testing.T, w http.ResponseWriter, obj any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(obj))
}

// addPrintings registers n single-faced printings of name, one per
// set code given.
func (u *testUpstream) addPrintings(name string, sets ...string) {
	for _, set := range sets {
		u.printings[name] = append(u.printings[name], map[string]any{
			"name": name,
			"set":  set,
			"lang": "en",
			"image_uris": map[string]any{
				"border_crop": fmt.Sprintf("%s/img/%s-%s.jpg", u.srv.URL, strings.ReplaceAll(name, " ", "_"), set),
			},
		})
	}
}

func (u *testUpstream) orchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	ctx := dlog.NewTestContext(t, false)
	client := scryfall.NewClient(u.srv.Client(), u.srv.URL)
	return New(ctx, client, t.TempDir(), nil)
}

func TestExpandCardsToImageURLs(t *testing.T) {
	t.Parallel()

	a := scryfall.Card{Name: "a", FrontImageURL: "a-front"}
	b := scryfall.Card{Name: "b", FrontImageURL: "b-front", BackImageURL: "b-back"}

	urls := ExpandCardsToImageURLs([]ResolvedCard{
		{Card: a, Multiple: 2, FaceMode: scryfall.FrontOnly},
		{Card: b, Multiple: 1, FaceMode: scryfall.BothSides},
	})
	assert.Equal(t, []string{"a-front", "a-front", "b-front", "b-back"}, urls)
}

func TestSelectPrinting(t *testing.T) {
	t.Parallel()

	result := scryfall.SearchResult{Cards: []scryfall.Card{
		{Name: "opt", Set: "xln", Language: "en", FrontImageURL: "u1"},
		{Name: "opt", Set: "m21", Language: "en", FrontImageURL: "u2"},
		{Name: "opt", Set: "m21", Language: "ja", FrontImageURL: "u3"},
	}}

	none := containers.OptionalNil[string]()

	got := selectPrinting(result, "opt", containers.OptionalValue("m21"), none)
	require.True(t, got.OK)
	assert.Equal(t, "u2", got.Val.FrontImageURL)

	got = selectPrinting(result, "opt", containers.OptionalValue("m21"), containers.OptionalValue("ja"))
	require.True(t, got.OK)
	assert.Equal(t, "u3", got.Val.FrontImageURL)

	// no printing satisfies the constraints: fall back to the first
	got = selectPrinting(result, "opt", containers.OptionalValue("zzz"), none)
	require.True(t, got.OK)
	assert.Equal(t, "u1", got.Val.FrontImageURL)

	got = selectPrinting(scryfall.SearchResult{}, "opt", none, none)
	assert.False(t, got.OK)
}

func TestSearchForCaching(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	u.addPrintings("lightning bolt", "lea", "m21")
	o := u.orchestrator(t)

	first, err := o.SearchFor(ctx, "Lightning Bolt")
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalFound)

	second, err := o.SearchFor(ctx, "lightning bolt")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	hist := o.Client().History()
	kinds := make([]scryfall.CallKind, 0, len(hist))
	for _, call := range hist {
		kinds = append(kinds, call.Kind)
	}
	assert.Equal(t, []scryfall.CallKind{
		scryfall.CacheMiss, scryfall.NetworkRequest, scryfall.CacheHit,
	}, kinds)
}

func TestFetchImageCaching(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	o := u.orchestrator(t)

	url := u.srv.URL + "/img/x.jpg"
	img, err := o.FetchImage(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, []byte("img:/img/x.jpg"), img)

	_, err = o.FetchImage(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.imgFetch.Load())
}

func TestParseAndResolveDecklist(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	o := u.orchestrator(t)

	entries, err := o.ParseAndResolveDecklist(ctx, "1 ribbons", scryfall.BothSides)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Multiple)
	assert.Equal(t, "cut // ribbons", entries[0].Name)
	assert.Equal(t, scryfall.BackOnly, entries[0].FaceMode)
}

func TestParseAndResolveDecklistNoMatch(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	o := u.orchestrator(t)

	entries, err := o.ParseAndResolveDecklist(ctx, "2 xyzzyplugh", scryfall.BothSides)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "xyzzyplugh", entries[0].Name)
	assert.Equal(t, scryfall.BothSides, entries[0].FaceMode)
}

func TestResolveEntriesToCards(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	u.addPrintings("lightning bolt", "lea", "m21")
	o := u.orchestrator(t)

	cards := o.ResolveEntriesToCards(ctx, []deck.Entry{
		{Multiple: 4, Name: "lightning bolt", Set: containers.OptionalValue("m21"), FaceMode: scryfall.FrontOnly},
		{Multiple: 1, Name: "no such card", FaceMode: scryfall.FrontOnly},
	})
	require.Len(t, cards, 1)
	assert.Equal(t, "m21", cards[0].Card.Set)
	assert.Equal(t, 4, cards[0].Multiple)
}

type fakeComposer struct {
	images [][]byte
	err    error
}

func (c *fakeComposer) Compose(_ context.Context, images [][]byte, _ PdfOptions) ([]byte, error) {
	c.images = images
	if c.err != nil {
		return nil, c.err
	}
	return []byte("%PDF"), nil
}

func TestGeneratePDFFromEntries(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	u.addPrintings("lightning bolt", "lea")
	o := u.orchestrator(t)

	composer := new(fakeComposer)
	var ticks [][2]int
	out, err := o.GeneratePDFFromEntries(ctx, []deck.Entry{
		{Multiple: 2, Name: "lightning bolt", FaceMode: scryfall.FrontOnly},
	}, DefaultPdfOptions, composer, func(done, total int) {
		ticks = append(ticks, [2]int{done, total})
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), out)
	require.Len(t, composer.images, 2)
	assert.Equal(t, composer.images[0], composer.images[1])
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, ticks)
}

func TestGeneratePDFComposerError(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	u.addPrintings("lightning bolt", "lea")
	o := u.orchestrator(t)

	composer := &fakeComposer{err: fmt.Errorf("out of ink")}
	_, err := o.GeneratePDFFromEntries(ctx, []deck.Entry{
		{Multiple: 1, Name: "lightning bolt", FaceMode: scryfall.FrontOnly},
	}, DefaultPdfOptions, composer, nil)
	var pdfErr *PdfError
	require.ErrorAs(t, err, &pdfErr)
}

func TestSaveCachesRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	u.addPrintings("lightning bolt", "lea")

	client := scryfall.NewClient(u.srv.Client(), u.srv.URL)
	dir := t.TempDir()

	o := New(ctx, client, dir, nil)
	_, err := o.SearchFor(ctx, "lightning bolt")
	require.NoError(t, err)
	require.NoError(t, o.SaveCaches(ctx))

	// a fresh orchestrator over the same cache dir answers from disk
	o2 := New(ctx, client, dir, nil)
	assert.True(t, o2.Caches().Searches.Has("lightning bolt"))
}
