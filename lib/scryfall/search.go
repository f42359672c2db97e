// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package scryfall

import (
	"context"
	"net/url"
	"strings"
)

// SearchResult is every printing the catalog knows for one card name.
// It is what the search cache persists, so the field names are pinned
// by the cache-file format.
type SearchResult struct {
	Cards      []Card `json:"cards"`
	TotalFound int    `json:"totalFound"`
}

// searchQuery builds the q= parameter for a name search.  The `//`
// separator of multi-face names is dropped (the upstream query
// grammar would misparse it), and url encoding turns the spaces into
// `+`.
func searchQuery(name string) string {
	cleaned := strings.Join(strings.Fields(strings.ReplaceAll(name, "//", " ")), " ")
	return url.QueryEscape(`name:"` + cleaned + `"`)
}

type rawSearchResponse struct {
	Object     string    `json:"object"`
	TotalCards int       `json:"total_cards"`
	HasMore    bool      `json:"has_more"`
	NextPage   string    `json:"next_page"`
	Data       []rawCard `json:"data"`
}

// SearchCards asks the catalog for every printing of the named card.
// Printings without usable artwork are dropped; TotalFound counts
// what the upstream reported, not what survived.
func (c *Client) SearchCards(ctx context.Context, name string) (SearchResult, error) {
	searchURL := c.baseURL + "/cards/search?q=" + searchQuery(name) + "&unique=prints"
	resp, err := getJSON[rawSearchResponse](ctx, c, searchURL)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		Cards:      cardsFromRaw(ctx, resp.Data),
		TotalFound: resp.TotalCards,
	}, nil
}
