// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"git.lukeshu.com/cardsheet/lib/cardsheet"
	"git.lukeshu.com/cardsheet/lib/textui"
)

func init() {
	var outFlag string
	cmd := subcommand{
		Command: cobra.Command{
			Use:   "generate DECKLIST_FILE",
			Short: "Fetch the full image sequence for a decklist and write it out in render order",
			Long: "" +
				"Generate resolves the decklist, picks a printing for every entry, " +
				"and fetches each image in the exact order a sheet composer would " +
				"lay them out, writing them to the output directory as numbered " +
				".jpg files.  Unlike `warm`, a fetch failure here aborts the run.",
			Args: cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		},
	}
	cmd.Flags().StringVar(&outFlag, "out", "sheet", "write images into `directory`")
	if err := cmd.MarkFlagDirname("out"); err != nil {
		panic(err)
	}
	cmd.RunE = func(o *cardsheet.Orchestrator, cobraCmd *cobra.Command, args []string) error {
		ctx := cobraCmd.Context()

		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		entries, err := o.ParseAndResolveDecklist(ctx, string(text), facesFlag.Mode)
		if err != nil {
			return err
		}
		cards := o.ResolveEntriesToCards(ctx, entries)
		urls := cardsheet.ExpandCardsToImageURLs(cards)

		if err := os.MkdirAll(outFlag, 0o755); err != nil {
			return err
		}
		progress := textui.NewProgress[textui.Portion[int]](ctx, dlog.LogLevelInfo, textui.Tunable(1*time.Second))
		progress.Set(textui.Portion[int]{D: len(urls)})
		for i, url := range urls {
			img, err := o.FetchImage(ctx, url)
			if err != nil {
				return err
			}
			filename := filepath.Join(outFlag, fmt.Sprintf("%04d.jpg", i))
			if err := os.WriteFile(filename, img, 0o644); err != nil {
				return err
			}
			progress.Set(textui.Portion[int]{N: i + 1, D: len(urls)})
		}
		progress.Done()
		dlog.Infof(ctx, "wrote %d images to %q", len(urls), outFlag)
		return nil
	}
	subcommands = append(subcommands, cmd)
}
