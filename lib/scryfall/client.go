// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package scryfall implements a client for the Scryfall card-catalog
// API: rate-limited fetching, the card/search data model, and the
// name and set-code catalog endpoints.
package scryfall

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/datawire/dlib/dlog"
)

const (
	// DefaultBaseURL is the production Scryfall API host.
	DefaultBaseURL = "https://api.scryfall.com"

	// Cooldown is the minimum delay between consecutive outbound
	// requests; Scryfall asks for 50-100ms between calls, so we
	// take the polite end.
	Cooldown = 100 * time.Millisecond

	userAgent = "cardsheet/1.0 (+https://git.lukeshu.com/cardsheet)"

	callHistorySize = 100
)

// CallKind classifies an entry in the call history.
type CallKind int

const (
	NetworkRequest CallKind = iota
	CacheHit
	CacheMiss
)

func (k CallKind) String() string {
	switch k {
	case NetworkRequest:
		return "network-request"
	case CacheHit:
		return "cache-hit"
	case CacheMiss:
		return "cache-miss"
	default:
		return "unknown"
	}
}

// ApiCall is one entry in the diagnostic call history.
type ApiCall struct {
	URL        string
	Timestamp  time.Time
	StatusCode int
	Success    bool
	Kind       CallKind
}

// Client talks to the upstream API.  All outbound requests made
// through one Client are strictly serialized: each waits until at
// least Cooldown has elapsed since the previous request was released,
// regardless of how many goroutines are calling in.
//
// A Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string

	// rateMu guards lastCallAt.  It is never held while sleeping
	// or while a request is in flight; a caller reserves its slot
	// under the lock and then sleeps until the slot arrives.
	rateMu     sync.Mutex
	lastCallAt time.Time

	histMu  sync.Mutex
	history []ApiCall
}

// NewClient creates a Client.  A nil httpClient means
// http.DefaultClient; an empty baseURL means DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// waitTurn reserves the next outbound slot and sleeps until it
// arrives.  It returns the slot time, which is also the request's
// timestamp in the call history.
func (c *Client) waitTurn(ctx context.Context) (time.Time, error) {
	c.rateMu.Lock()
	now := time.Now()
	nextAllowed := c.lastCallAt.Add(Cooldown)
	if nextAllowed.Before(now) {
		nextAllowed = now
	}
	c.lastCallAt = nextAllowed
	c.rateMu.Unlock()

	if d := time.Until(nextAllowed); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		case <-timer.C:
		}
	}
	return nextAllowed, nil
}

func (c *Client) recordCall(call ApiCall) {
	c.histMu.Lock()
	defer c.histMu.Unlock()
	c.history = append(c.history, call)
	if len(c.history) > callHistorySize {
		c.history = c.history[len(c.history)-callHistorySize:]
	}
}

// RecordCacheHit notes in the call history that a request for url was
// answered from cache instead of going to the network.
func (c *Client) RecordCacheHit(url string) {
	c.recordCall(ApiCall{URL: url, Timestamp: time.Now(), Success: true, Kind: CacheHit})
}

// RecordCacheMiss notes in the call history that a request for url
// was not in cache and is about to go to the network.
func (c *Client) RecordCacheMiss(url string) {
	c.recordCall(ApiCall{URL: url, Timestamp: time.Now(), Success: true, Kind: CacheMiss})
}

// History returns a copy of the call history (at most the last 100
// calls).
func (c *Client) History() []ApiCall {
	c.histMu.Lock()
	defer c.histMu.Unlock()
	ret := make([]ApiCall, len(c.history))
	copy(ret, c.history)
	return ret
}

// get performs one rate-limited GET and returns the response body.
// Non-2xx statuses and transport failures both come back as a
// *NetworkError.  There are no retries.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	slot, err := c.waitTurn(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")

	dlog.Debugf(ctx, "GET %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordCall(ApiCall{URL: url, Timestamp: slot, Kind: NetworkRequest})
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	ok := err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300
	c.recordCall(ApiCall{
		URL:        url,
		Timestamp:  slot,
		StatusCode: resp.StatusCode,
		Success:    ok,
		Kind:       NetworkRequest,
	})
	if err != nil {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}
	return body, nil
}

// getJSON performs one rate-limited GET and decodes the body into a
// T.
func getJSON[T any](ctx context.Context, c *Client, url string) (T, error) {
	var zero T
	body, err := c.get(ctx, url)
	if err != nil {
		return zero, err
	}
	var ret T
	if err := lowmemjson.DecodeThenEOF(bytes.NewReader(body), &ret); err != nil {
		return zero, &DeserializationError{URL: url, Err: err}
	}
	return ret, nil
}

// FetchImage fetches raw image bytes from an image URL returned by
// the catalog.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}
