// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cardsheet

import (
	"testing"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lukeshu.com/cardsheet/lib/deck"
	"git.lukeshu.com/cardsheet/lib/scryfall"
)

func TestLoaderPhases(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	u.addPrintings("lightning bolt", "lea", "m21", "sta")
	u.addPrintings("memory lapse", "mir", "m21", "sth")
	o := u.orchestrator(t)

	entries := []deck.Entry{
		{Multiple: 1, Name: "lightning bolt", FaceMode: scryfall.FrontOnly},
		{Multiple: 1, Name: "memory lapse", FaceMode: scryfall.FrontOnly},
	}

	loader := o.StartLoad(ctx, entries)
	require.NoError(t, loader.Wait(ctx))

	var events []Progress
	for p := range loader.Events() {
		events = append(events, p)
	}
	require.NotEmpty(t, events)

	// one Selected event per entry, then the alternatives, then
	// the Completed marker
	var selected, alternatives int
	for _, p := range events {
		switch p.Phase {
		case PhaseSelected:
			selected++
		case PhaseAlternatives:
			alternatives++
		}
		assert.Empty(t, p.Errors)
	}
	assert.Equal(t, 2, selected)
	assert.Equal(t, 4, alternatives)

	final := events[len(events)-1]
	assert.Equal(t, PhaseCompleted, final.Phase)
	assert.Equal(t, 2, final.SelectedLoaded)
	assert.Equal(t, 4, final.AlternativesLoaded)
	assert.Equal(t, 4, final.TotalAlternatives)

	// 2 selected + 4 alternative images went to the network
	assert.Equal(t, int64(6), u.imgFetch.Load())

	// monotonicity: counters never go down, the phase never goes
	// back
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].SelectedLoaded, events[i-1].SelectedLoaded)
		assert.GreaterOrEqual(t, events[i].AlternativesLoaded, events[i-1].AlternativesLoaded)
		assert.GreaterOrEqual(t, events[i].Phase, events[i-1].Phase)
	}
}

func TestLoaderCollectsErrors(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	u.addPrintings("lightning bolt", "lea")
	o := u.orchestrator(t)

	entries := []deck.Entry{
		{Multiple: 1, Name: "no such card", FaceMode: scryfall.FrontOnly},
		{Multiple: 1, Name: "lightning bolt", FaceMode: scryfall.FrontOnly},
	}

	loader := o.StartLoad(ctx, entries)
	require.NoError(t, loader.Wait(ctx))

	final := loader.Latest()
	assert.Equal(t, PhaseCompleted, final.Phase)
	assert.Len(t, final.Errors, 1)
	assert.Equal(t, 1, final.SelectedLoaded)
}

func TestLoaderCancel(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	// enough printings that the load takes a while (every image
	// fetch pays the rate-limit cooldown)
	u.addPrintings("lightning bolt",
		"s01", "s02", "s03", "s04", "s05", "s06", "s07", "s08", "s09", "s10")
	o := u.orchestrator(t)

	entries := []deck.Entry{
		{Multiple: 1, Name: "lightning bolt", FaceMode: scryfall.FrontOnly},
	}

	loader := o.StartLoad(ctx, entries)
	time.Sleep(50 * time.Millisecond)
	loader.Cancel()
	require.NoError(t, loader.Wait(ctx))

	// cancellation is not an error, and the load never completed
	final := loader.Latest()
	assert.NotEqual(t, PhaseCompleted, final.Phase)
	assert.Less(t, final.AlternativesLoaded, 9)
}

func TestLoaderLatestCoalesces(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	u := newTestUpstream(t)
	u.addPrintings("lightning bolt", "lea", "m21")
	o := u.orchestrator(t)

	loader := o.StartLoad(ctx, []deck.Entry{
		{Multiple: 1, Name: "lightning bolt", FaceMode: scryfall.FrontOnly},
	})
	// never touch Events(); polling alone must observe completion
	require.NoError(t, loader.Wait(ctx))
	assert.Equal(t, PhaseCompleted, loader.Latest().Phase)
}
