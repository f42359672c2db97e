// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"git.lukeshu.com/cardsheet/lib/cardsheet"
	"git.lukeshu.com/cardsheet/lib/textui"
)

func init() {
	subcommands = append(subcommands, subcommand{
		Command: cobra.Command{
			Use:   "resolve DECKLIST_FILE",
			Short: "Parse a decklist and resolve each name against the catalog",
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
			for _, ent := range entries {
				line := textui.Sprintf("%d %s", ent.Multiple, ent.Name)
				if ent.Set.OK {
					line += textui.Sprintf(" (%s)", ent.Set.Val)
				}
				if ent.Lang.OK {
					line += textui.Sprintf(" [%s]", ent.Lang.Val)
				}
				textui.Fprintf(os.Stdout, "%s\t# faces=%v line=%d\n", line, ent.FaceMode, ent.SourceLine)
			}
			return nil
		},
	})
}
