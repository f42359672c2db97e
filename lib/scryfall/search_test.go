// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package scryfall

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `name%3A%22lightning+bolt%22`, searchQuery("lightning bolt"))
	assert.Equal(t, `name%3A%22cut+ribbons%22`, searchQuery("cut // ribbons"))
	assert.Equal(t, `name%3A%22opt%22`, searchQuery("opt"))
}

func TestSearchCards(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cards/search", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
			"object": "list",
			"total_cards": 3,
			"has_more": false,
			"data": [
				{"name": "Cut // Ribbons", "set": "akh", "lang": "en",
				 "card_faces": [
					{"name": "Cut", "image_uris": {"border_crop": "https://img/akh-front.jpg"}},
					{"name": "Ribbons"}
				 ],
				 "image_uris": {"border_crop": "https://img/akh.jpg"}},
				{"name": "Cut // Ribbons", "set": "pakh", "lang": "en",
				 "image_uris": {"border_crop": "https://img/pakh.jpg"}},
				{"name": "Cut // Ribbons", "set": "bad", "lang": "en"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	result, err := client.SearchCards(ctx, "cut // ribbons")
	require.NoError(t, err)

	assert.Equal(t, `q=name%3A%22cut+ribbons%22&unique=prints`, gotQuery)
	assert.Equal(t, 3, result.TotalFound)
	require.Len(t, result.Cards, 2) // the artless printing is dropped
	assert.Equal(t, "akh", result.Cards[0].Set)
	assert.Equal(t, "https://img/akh-front.jpg", result.Cards[0].FrontImageURL)
	assert.Equal(t, "pakh", result.Cards[1].Set)
}
