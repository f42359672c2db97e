// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package jsonfile implements reading and writing whole-file JSON
// documents.
//
// Writes are write-to-tempfile-then-rename, so that a crash mid-write
// leaves either the old file or the new file, never a truncated
// hybrid.
package jsonfile

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/datawire/dlib/dlog"
	"github.com/natefinch/atomic"
)

// ReadFile parses the named file into a T.
func ReadFile[T any](ctx context.Context, filename string) (T, error) {
	var zero T
	fh, err := os.Open(filename)
	if err != nil {
		return zero, err
	}
	defer func() {
		_ = fh.Close()
	}()
	dlog.Debug(dlog.WithField(ctx, "cardsheet.read-json-file", filename), "reading...")
	var ret T
	if err := lowmemjson.DecodeThenEOF(bufio.NewReader(fh), &ret); err != nil {
		return zero, fmt.Errorf("read %q: %w", filename, err)
	}
	return ret, nil
}

// WriteFile atomically replaces the named file with the JSON
// serialization of obj.
func WriteFile(filename string, obj any) error {
	var buf bytes.Buffer
	if err := lowmemjson.Encode(&lowmemjson.ReEncoder{
		Out:                   &buf,
		ForceTrailingNewlines: true,
	}, obj); err != nil {
		return fmt.Errorf("write %q: %w", filename, err)
	}
	if err := atomic.WriteFile(filename, &buf); err != nil {
		return fmt.Errorf("write %q: %w", filename, err)
	}
	return nil
}
