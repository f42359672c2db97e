// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskcache

// Metrics receives cache events.  Implementations must be safe for
// concurrent use.
type Metrics interface {
	Hit()
	Miss()
	Evict()
}

// NopMetrics is a drop-in Metrics that does nothing; it is the
// default when no observability backend is configured.
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) Hit()   {}
func (NopMetrics) Miss()  {}
func (NopMetrics) Evict() {}
