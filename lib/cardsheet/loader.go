// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cardsheet

import (
	"context"
	"fmt"
	"sync"

	"github.com/datawire/dlib/dlog"

	"git.lukeshu.com/cardsheet/lib/deck"
	"git.lukeshu.com/cardsheet/lib/scryfall"
)

// Phase is where the background loader is in its pipeline.
type Phase int

const (
	// PhaseSelected is the first pass: the chosen printing of
	// every entry, all of its faces.
	PhaseSelected Phase = iota
	// PhaseAlternatives is the second pass: every other printing,
	// front face only.
	PhaseAlternatives
	// PhaseCompleted means both passes finished.
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseSelected:
		return "selected"
	case PhaseAlternatives:
		return "alternatives"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Progress is one snapshot of a background load.  The counters only
// ever go up, and Phase only ever goes forward.
type Progress struct {
	Phase Phase

	CurrentEntry int
	TotalEntries int

	SelectedLoaded     int
	AlternativesLoaded int
	TotalAlternatives  int

	// Errors is everything that went wrong so far.  Failures
	// never stop a background load; they accumulate here.
	Errors []error
}

// Loader is a handle to one background load: a dedicated worker
// warming the search and image caches for a resolved decklist.
//
// Progress can be consumed either by receiving from Events (slow
// consumers see a coalesced stream, never a stalled worker) or by
// polling Latest.
type Loader struct {
	cancel context.CancelFunc
	events chan Progress
	done   chan struct{}

	mu     sync.Mutex
	latest Progress
}

// StartLoad begins warming caches for entries in the background and
// returns immediately.
func (o *Orchestrator) StartLoad(ctx context.Context, entries []deck.Entry) *Loader {
	ctx, cancel := context.WithCancel(ctx)
	l := &Loader{
		cancel: cancel,
		events: make(chan Progress, 64),
		done:   make(chan struct{}),
	}
	go func() {
		defer cancel()
		defer close(l.done)
		defer close(l.events)
		o.load(ctx, entries, l.emit)
	}()
	return l
}

// Events streams progress snapshots; it is closed when the load
// finishes or is cancelled.
func (l *Loader) Events() <-chan Progress { return l.events }

// Latest returns the most recent progress snapshot.
func (l *Loader) Latest() Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

// Cancel stops the load at the next iteration boundary.  Cancellation
// is not an error; the worker just stops emitting and exits.
func (l *Loader) Cancel() { l.cancel() }

// Wait blocks until the load finishes or is cancelled, or until ctx
// is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) emit(p Progress) {
	p.Errors = append([]error(nil), p.Errors...)
	l.mu.Lock()
	l.latest = p
	l.mu.Unlock()
	// If the consumer is behind (or gone), drop rather than
	// block; they can always poll Latest.
	select {
	case l.events <- p:
	default:
	}
}

// load is the worker body: §Phase 1 fetches the selected printing of
// each entry (all faces per the entry's face mode), then Phase 2
// fetches the front face of every alternative printing.  Back faces
// of alternatives are deliberately skipped as lower value.
func (o *Orchestrator) load(ctx context.Context, entries []deck.Entry, emit func(Progress)) {
	ctx = dlog.WithField(ctx, "cardsheet.load.phase", PhaseSelected)
	p := Progress{
		Phase:        PhaseSelected,
		TotalEntries: len(entries),
	}

	results := make([]scryfall.SearchResult, len(entries))
	selectedIdx := make([]int, len(entries))

	for i, ent := range entries {
		if ctx.Err() != nil {
			return
		}
		p.CurrentEntry = i
		selectedIdx[i] = -1
		entCtx := dlog.WithField(ctx, "cardsheet.load.entry", i)

		result, err := o.SearchFor(entCtx, ent.Name)
		if err != nil {
			p.Errors = append(p.Errors, err)
			emit(p)
			continue
		}
		results[i] = result

		card := selectPrinting(result, ent.Name, ent.Set, ent.Lang)
		if !card.OK {
			p.TotalAlternatives += len(result.Cards)
			p.Errors = append(p.Errors, fmt.Errorf("no printings found for %q", ent.Name))
			emit(p)
			continue
		}
		for idx := range result.Cards {
			if result.Cards[idx] == card.Val {
				selectedIdx[i] = idx
				break
			}
		}
		p.TotalAlternatives += len(result.Cards) - 1

		ok := true
		for _, url := range card.Val.ImagesForFaceMode(ent.FaceMode) {
			if _, err := o.FetchImage(entCtx, url); err != nil {
				p.Errors = append(p.Errors, err)
				ok = false
			}
		}
		if ok {
			p.SelectedLoaded++
		}
		dlog.Debugf(entCtx, "warmed selected printing of %q", ent.Name)
		emit(p)
	}

	if ctx.Err() != nil {
		return
	}
	p.Phase = PhaseAlternatives
	ctx = dlog.WithField(ctx, "cardsheet.load.phase", PhaseAlternatives)

	for i, ent := range entries {
		p.CurrentEntry = i
		entCtx := dlog.WithField(ctx, "cardsheet.load.entry", i)
		for altIdx, card := range results[i].Cards {
			if ctx.Err() != nil {
				return
			}
			if altIdx == selectedIdx[i] {
				continue
			}
			altCtx := dlog.WithField(entCtx, "cardsheet.load.alt", altIdx)
			if _, err := o.FetchImage(altCtx, card.FrontImageURL); err != nil {
				p.Errors = append(p.Errors, err)
			} else {
				p.AlternativesLoaded++
				dlog.Debugf(altCtx, "warmed alternative printing of %q", ent.Name)
			}
			emit(p)
		}
	}

	if ctx.Err() != nil {
		return
	}
	p.Phase = PhaseCompleted
	p.CurrentEntry = len(entries)
	emit(p)
}
