// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package textui

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// LiveMemUse is a log field value that renders the process's current
// memory use whenever the log line is formatted.  Image bytes pass
// through this program in bulk, so it's worth being able to watch.
type LiveMemUse struct {
	mu    sync.Mutex
	stats runtime.MemStats
	last  time.Time
}

var _ fmt.Stringer = (*LiveMemUse)(nil)

// runtime.ReadMemStats() calls stopTheWorld(), so rate-limit how
// often we call it.
var LiveMemUseUpdateInterval = Tunable(1 * time.Second)

func (o *LiveMemUse) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if now := time.Now(); now.Sub(o.last) > LiveMemUseUpdateInterval {
		runtime.ReadMemStats(&o.stats)
		o.last = now
	}

	// .Sys is the address space the runtime has mapped r/w;
	// .HeapReleased is the part of that it has told the OS it can
	// reclaim, so the difference is what we're actually sitting
	// on.
	held := o.stats.Sys - o.stats.HeapReleased
	data := o.stats.HeapAlloc + o.stats.StackInuse

	return Sprintf("held=%.1f (data:%.1f)",
		IEC(held, "B"),
		IEC(data, "B"))
}
