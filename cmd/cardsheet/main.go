// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Command cardsheet turns free-form decklists into print-ready sheets
// of card images, caching catalog data and artwork locally.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"git.lukeshu.com/cardsheet/lib/cardsheet"
	"git.lukeshu.com/cardsheet/lib/diskcache"
	"git.lukeshu.com/cardsheet/lib/profile"
	"git.lukeshu.com/cardsheet/lib/promcard"
	"git.lukeshu.com/cardsheet/lib/scryfall"
	"git.lukeshu.com/cardsheet/lib/textui"
)

type subcommand struct {
	cobra.Command
	RunE func(*cardsheet.Orchestrator, *cobra.Command, []string) error
}

var subcommands []subcommand

// faceModeFlag is a pflag.Value for --faces.
type faceModeFlag struct {
	Mode scryfall.FaceMode
}

var _ pflag.Value = (*faceModeFlag)(nil)

func (f *faceModeFlag) String() string { return f.Mode.String() }

func (f *faceModeFlag) Set(s string) error {
	switch s {
	case "front":
		f.Mode = scryfall.FrontOnly
	case "back":
		f.Mode = scryfall.BackOnly
	case "both":
		f.Mode = scryfall.BothSides
	default:
		return fmt.Errorf("invalid face mode: %q (must be front, back, or both)", s)
	}
	return nil
}

func (*faceModeFlag) Type() string { return "front|back|both" }

// facesFlag is the root --faces flag; subcommands read it directly.
var facesFlag = faceModeFlag{Mode: scryfall.FrontOnly}

func main() {
	logLevelFlag := textui.LogLevelFlag{
		Level: dlog.LogLevelInfo,
	}
	var configFlag string
	var cacheDirFlag string
	var apiBaseFlag string
	var metricsFlag string

	argparser := &cobra.Command{
		Use:   "cardsheet {[flags]|SUBCOMMAND}",
		Short: "Turn decklists into print-ready sheets of card images",

		Args: cliutil.WrapPositionalArgs(cliutil.OnlySubcommands),
		RunE: cliutil.RunSubcommands,

		SilenceErrors: true, // main() will handle this after .ExecuteContext() returns
		SilenceUsage:  true, // our FlagErrorFunc will handle it

		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
	argparser.PersistentFlags().Var(&logLevelFlag, "verbosity", "set the verbosity")
	argparser.PersistentFlags().StringVar(&configFlag, "config", "", "load settings from the HuJSON file `cardsheet.hujson`")
	if err := argparser.MarkPersistentFlagFilename("config"); err != nil {
		panic(err)
	}
	argparser.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "cache catalog data and artwork under `directory` (default: the platform cache directory)")
	if err := argparser.MarkPersistentFlagDirname("cache-dir"); err != nil {
		panic(err)
	}
	argparser.PersistentFlags().StringVar(&apiBaseFlag, "api-base", "", "talk to the card catalog at `url` instead of the default")
	argparser.PersistentFlags().StringVar(&metricsFlag, "metrics-listen", "", "serve Prometheus cache metrics on `addr` while running")
	argparser.PersistentFlags().Var(&facesFlag, "faces", "which face(s) of double-faced cards to render")
	profileStop := profile.AddProfileFlags(argparser.PersistentFlags(), "profile-")

	for i := range subcommands {
		child := &subcommands[i]
		cmd := child.Command
		runE := child.RunE
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := textui.NewLogger(os.Stderr, logLevelFlag.Level)
			ctx = dlog.WithLogger(ctx, logger)
			ctx = dlog.WithField(ctx, "mem", new(textui.LiveMemUse))
			dlog.SetFallbackLogger(logger.WithField("cardsheet.THIS_IS_A_BUG", true))

			cfg, err := loadConfig(ctx, configFlag)
			if err != nil {
				return err
			}
			if cacheDirFlag != "" {
				cfg.CacheDir = cacheDirFlag
			}
			if apiBaseFlag != "" {
				cfg.APIBase = apiBaseFlag
			}
			if flag := cmd.Flags().Lookup("faces"); flag == nil || !flag.Changed {
				if cfg.Faces != "" {
					if err := facesFlag.Set(cfg.Faces); err != nil {
						return err
					}
				}
			}
			cacheDir, err := resolveCacheDir(cfg.CacheDir)
			if err != nil {
				return err
			}

			grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
				EnableSignalHandling: true,
			})
			grp.Go("main", func(ctx context.Context) (err error) {
				maybeSetErr := func(_err error) {
					if _err != nil && err == nil {
						err = _err
					}
				}

				var metrics diskcache.Metrics
				if metricsFlag != "" {
					reg := prometheus.NewRegistry()
					metrics = promcard.New(reg, "all")
					srv := &http.Server{
						Addr:    metricsFlag,
						Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					}
					grp.Go("metrics", func(ctx context.Context) error {
						go func() {
							<-ctx.Done()
							_ = srv.Close()
						}()
						if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
							return err
						}
						return nil
					})
					defer func() { _ = srv.Close() }()
				}

				client := scryfall.NewClient(nil, cfg.APIBase)
				o := cardsheet.New(ctx, client, cacheDir, metrics)
				defer func() {
					maybeSetErr(o.SaveCaches(ctx))
				}()
				defer func() {
					maybeSetErr(profileStop())
				}()

				cmd.SetContext(ctx)
				return runE(o, cmd, args)
			})
			return grp.Wait()
		}
		argparser.AddCommand(&cmd)
	}

	if err := argparser.ExecuteContext(context.Background()); err != nil {
		textui.Fprintf(os.Stderr, "%v: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}
