// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"git.lukeshu.com/cardsheet/lib/cardsheet"
	"git.lukeshu.com/cardsheet/lib/diskcache"
	"git.lukeshu.com/cardsheet/lib/textui"
)

func init() {
	subcommands = append(subcommands, subcommand{
		Command: cobra.Command{
			Use:   "spew-entries DECKLIST_FILE",
			Short: "Spew parsed-and-resolved decklist entries, for debugging",
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

			spew := spew.NewDefaultConfig()
			spew.DisablePointerAddresses = true
			for _, ent := range entries {
				spew.Dump(ent)
				_, _ = os.Stdout.WriteString("\n")
			}
			return nil
		},
	})

	subcommands = append(subcommands, subcommand{
		Command: cobra.Command{
			Use:   "spew-search CARD_NAME",
			Short: "Spew the (possibly cached) search result for a card name, for debugging",
			Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		},
		RunE: func(o *cardsheet.Orchestrator, cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			result, err := o.SearchFor(ctx, args[0])
			if err != nil {
				return err
			}
			spew := spew.NewDefaultConfig()
			spew.DisablePointerAddresses = true
			spew.Dump(result)

			for _, call := range o.Client().History() {
				textui.Fprintf(os.Stdout, "%v %v %s\n", call.Timestamp.Format("15:04:05.0000"), call.Kind, call.URL)
			}
			return nil
		},
	})

	subcommands = append(subcommands, subcommand{
		Command: cobra.Command{
			Use:   "cache-stats",
			Short: "Show how full the image and search caches are",
			Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		},
		RunE: func(o *cardsheet.Orchestrator, cmd *cobra.Command, _ []string) error {
			for _, row := range []struct {
				name  string
				stats diskcache.Stats
			}{
				{"images", o.Caches().Images.Stats()},
				{"searches", o.Caches().Searches.Stats()},
			} {
				textui.Fprintf(os.Stdout, "%s: %d entries, %.1f", row.name, row.stats.Count, textui.IEC(row.stats.Bytes, "B"))
				if !row.stats.OldestCreatedAt.IsZero() {
					textui.Fprintf(os.Stdout, ", oldest from %v", row.stats.OldestCreatedAt.Format("2006-01-02"))
				}
				_, _ = os.Stdout.WriteString("\n")
			}
			return nil
		},
	})

	subcommands = append(subcommands, subcommand{
		Command: cobra.Command{
			Use:   "refresh-catalogs",
			Short: "Re-fetch the card-name and set-code catalogs, ignoring their freshness windows",
			Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		},
		RunE: func(o *cardsheet.Orchestrator, cmd *cobra.Command, _ []string) error {
			return o.RefreshCatalogs(cmd.Context())
		},
	})
}
