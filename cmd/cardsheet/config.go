// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dlog"
	"github.com/tailscale/hujson"
)

// config is the optional settings file; flags override it.  It is
// HuJSON (JSON with comments and trailing commas), so it's pleasant
// to hand-edit.
type config struct {
	CacheDir string `json:"cacheDir"`
	APIBase  string `json:"apiBase"`
	Faces    string `json:"faces"` // front|back|both

	Pdf struct {
		Columns int `json:"columns"`
		Rows    int `json:"rows"`
	} `json:"pdf"`
}

func loadConfig(ctx context.Context, filename string) (config, error) {
	var cfg config
	if filename == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return cfg, fmt.Errorf("config %q: %w", filename, err)
	}
	if err := json.Unmarshal(std, &cfg); err != nil {
		return cfg, fmt.Errorf("config %q: %w", filename, err)
	}
	dlog.Debugf(ctx, "loaded config from %q", filename)
	return cfg, nil
}

// resolveCacheDir turns the configured cache directory (possibly
// empty) into a concrete per-user path.
func resolveCacheDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cardsheet"), nil
}
