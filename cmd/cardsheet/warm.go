// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"git.lukeshu.com/cardsheet/lib/cardsheet"
	"git.lukeshu.com/cardsheet/lib/textui"
)

// warmStats is the textui progress rendering of a background load.
type warmStats struct {
	Phase    cardsheet.Phase
	Selected textui.Portion[int]
	Alts     textui.Portion[int]
	Errors   int
}

func (s warmStats) String() string {
	ret := textui.Sprintf("%v: selected=%v alternatives=%v", s.Phase, s.Selected, s.Alts)
	if s.Errors > 0 {
		ret += textui.Sprintf(" errors=%v", s.Errors)
	}
	return ret
}

var _ fmt.Stringer = warmStats{}

func init() {
	subcommands = append(subcommands, subcommand{
		Command: cobra.Command{
			Use:   "warm DECKLIST_FILE",
			Short: "Pre-fetch search results and artwork for a decklist into the cache",
			Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		},
		RunE: func(o *cardsheet.Orchestrator, cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			entries, err := o.ParseAndResolveDecklist(ctx, string(text), facesFlag.Mode)
			if err != nil {
				return err
			}

			loader := o.StartLoad(ctx, entries)
			progress := textui.NewProgress[warmStats](ctx, dlog.LogLevelInfo, textui.Tunable(1*time.Second))
			progress.Set(warmStats{Selected: textui.Portion[int]{D: len(entries)}})
			for p := range loader.Events() {
				progress.Set(warmStats{
					Phase:    p.Phase,
					Selected: textui.Portion[int]{N: p.SelectedLoaded, D: p.TotalEntries},
					Alts:     textui.Portion[int]{N: p.AlternativesLoaded, D: p.TotalAlternatives},
					Errors:   len(p.Errors),
				})
			}
			progress.Done()

			final := loader.Latest()
			for _, err := range final.Errors {
				dlog.Warnf(ctx, "load error: %v", err)
			}
			if ctx.Err() != nil {
				dlog.Infof(ctx, "cancelled; %d selected and %d alternatives warmed",
					final.SelectedLoaded, final.AlternativesLoaded)
				return nil
			}
			dlog.Infof(ctx, "warmed %d selected printings and %d alternatives (%d errors)",
				final.SelectedLoaded, final.AlternativesLoaded, len(final.Errors))
			return nil
		},
	})
}
