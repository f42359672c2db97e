// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package scryfall

import (
	"fmt"
)

// NetworkError is a transport failure or a non-2xx status from the
// upstream API.
type NetworkError struct {
	URL        string
	StatusCode int // 0 if the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %q: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %q: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DeserializationError is a response body that is not the JSON we
// expect.
type DeserializationError struct {
	URL string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("parse response from %q: %v", e.URL, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// InvalidCardError is an upstream card record that is missing fields
// we require (most commonly the border-crop artwork).
type InvalidCardError struct {
	Name   string
	Reason string
}

func (e *InvalidCardError) Error() string {
	return fmt.Sprintf("card %q: %s", e.Name, e.Reason)
}
