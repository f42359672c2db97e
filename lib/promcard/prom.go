// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package promcard exports cache activity as Prometheus metrics.
package promcard

import (
	"github.com/prometheus/client_golang/prometheus"

	"git.lukeshu.com/cardsheet/lib/diskcache"
)

// Metrics implements diskcache.Metrics on Prometheus counters.  One
// Metrics instance may be shared by several caches; use the name
// label to tell them apart.
type Metrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	evicts prometheus.Counter
}

var _ diskcache.Metrics = (*Metrics)(nil)

// New creates a Metrics registering its counters with reg, labeled
// with the cache name.
func New(reg prometheus.Registerer, cache string) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "cardsheet_cache_hits_total",
			Help:        "Lookups answered from cache.",
			ConstLabels: prometheus.Labels{"cache": cache},
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "cardsheet_cache_misses_total",
			Help:        "Lookups that missed the cache.",
			ConstLabels: prometheus.Labels{"cache": cache},
		}),
		evicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "cardsheet_cache_evictions_total",
			Help:        "Entries evicted to stay within cache limits.",
			ConstLabels: prometheus.Labels{"cache": cache},
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.evicts)
	return m
}

func (m *Metrics) Hit()   { m.hits.Inc() }
func (m *Metrics) Miss()  { m.misses.Inc() }
func (m *Metrics) Evict() { m.evicts.Inc() }
