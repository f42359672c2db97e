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

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/catalog/card-names":
			_, _ = w.Write([]byte(`{
				"object": "catalog",
				"uri": "https://api.example.com/catalog/card-names",
				"total_values": 3,
				"data": ["Cut // Ribbons", "Lightning Bolt", "Opt"]
			}`))
		case "/sets":
			_, _ = w.Write([]byte(`{
				"data": [
					{"code": "BRO", "name": "The Brothers' War"},
					{"code": "m21", "name": "Core Set 2021"}
				]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)

	names, err := client.CardNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, names.TotalValues)
	assert.Equal(t, []string{"Cut // Ribbons", "Lightning Bolt", "Opt"}, names.Data)

	codes, err := client.SetCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BRO", "m21"}, codes)
}
