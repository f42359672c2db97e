// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package scryfall

import (
	"context"
)

// NameCatalog is the upstream registry of every canonical card name.
// The field names are pinned by the catalog cache-file format.
type NameCatalog struct {
	Object      string   `json:"object"`
	URI         string   `json:"uri"`
	TotalValues int      `json:"total_values"`
	Date        string   `json:"date,omitempty"`
	Data        []string `json:"data"`
}

// CardNames fetches the full card-name catalog.
func (c *Client) CardNames(ctx context.Context) (NameCatalog, error) {
	return getJSON[NameCatalog](ctx, c, c.baseURL+"/catalog/card-names")
}

type rawSetsResponse struct {
	Data []struct {
		Code string `json:"code"`
	} `json:"data"`
}

// SetCodes fetches the short code of every set the catalog knows.
func (c *Client) SetCodes(ctx context.Context) ([]string, error) {
	resp, err := getJSON[rawSetsResponse](ctx, c, c.baseURL+"/sets")
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(resp.Data))
	for _, s := range resp.Data {
		codes = append(codes, s.Code)
	}
	return codes, nil
}
