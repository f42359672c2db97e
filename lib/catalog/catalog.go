// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package catalog implements disk-persistent snapshots of the
// upstream card-name and set-code registries, refreshed when older
// than a freshness window.
package catalog

import (
	"context"
	"time"

	"github.com/datawire/dlib/dlog"

	"git.lukeshu.com/cardsheet/lib/jsonfile"
)

// DefaultTTL is how long a cached catalog snapshot stays fresh.
const DefaultTTL = 24 * time.Hour

// envelope wraps a persisted catalog document with the time it was
// fetched.
type envelope[T any] struct {
	CachedAt time.Time `json:"cachedAt"`
	Data     T         `json:"data"`
}

// readThrough implements the shared read path: return the on-disk
// snapshot if it parses and is younger than ttl, otherwise fetch a
// fresh one and persist it.  A corrupt or missing file is a miss,
// never an error; a failed write of the fresh data is an error (the
// fetch worked, but the next run would silently re-fetch).
func readThrough[T any](
	ctx context.Context,
	filename string,
	ttl time.Duration,
	forceRefresh bool,
	fetch func(context.Context) (T, error),
) (T, error) {
	ctx = dlog.WithField(ctx, "cardsheet.catalog", filename)
	if !forceRefresh {
		env, err := jsonfile.ReadFile[envelope[T]](ctx, filename)
		switch {
		case err != nil:
			dlog.Debugf(ctx, "no usable cached catalog: %v", err)
		case time.Since(env.CachedAt) >= ttl:
			dlog.Debugf(ctx, "cached catalog is stale (fetched %v)", env.CachedAt)
		default:
			dlog.Debug(ctx, "catalog cache hit")
			return env.Data, nil
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := jsonfile.WriteFile(filename, envelope[T]{
		CachedAt: time.Now(),
		Data:     data,
	}); err != nil {
		var zero T
		return zero, err
	}
	return data, nil
}
