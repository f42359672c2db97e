// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers_test

import (
	"bytes"
	"strings"
	"testing"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lukeshu.com/cardsheet/lib/containers"
)

func TestSetBasics(t *testing.T) {
	t.Parallel()

	s := containers.NewSet("akh", "bro")
	assert.True(t, s.Has("akh"))
	assert.False(t, s.Has("m21"))
	s.Insert("m21")
	assert.True(t, s.Has("m21"))
	assert.Equal(t, 3, s.Len())
	s.Delete("akh")
	assert.False(t, s.Has("akh"))
}

func TestSetJSON(t *testing.T) {
	t.Parallel()

	s := containers.NewSet("c", "a", "b")
	var buf bytes.Buffer
	require.NoError(t, lowmemjson.Encode(&buf, s))
	// serializes sorted, regardless of insertion order
	assert.Equal(t, `["a","b","c"]`, buf.String())

	var got containers.Set[string]
	require.NoError(t, lowmemjson.DecodeThenEOF(strings.NewReader(`["x","y"]`), &got))
	assert.Equal(t, containers.NewSet("x", "y"), got)

	var asNull containers.Set[string]
	require.NoError(t, lowmemjson.DecodeThenEOF(strings.NewReader(`null`), &asNull))
	assert.Nil(t, asNull)
}

func TestOptionalJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, lowmemjson.Encode(&buf, containers.OptionalValue("ja")))
	assert.Equal(t, `"ja"`, buf.String())

	buf.Reset()
	require.NoError(t, lowmemjson.Encode(&buf, containers.OptionalNil[string]()))
	assert.Equal(t, `null`, buf.String())

	var got containers.Optional[string]
	require.NoError(t, lowmemjson.DecodeThenEOF(strings.NewReader(`"bro"`), &got))
	assert.Equal(t, containers.OptionalValue("bro"), got)

	require.NoError(t, lowmemjson.DecodeThenEOF(strings.NewReader(`null`), &got))
	assert.False(t, got.OK)
}

func TestLRUCache(t *testing.T) {
	t.Parallel()

	c := containers.NewLRUCache[string, int](4)
	c.Add("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = c.Get("b")
	assert.False(t, ok)

	calls := 0
	v = c.GetOrElse("b", func() int { calls++; return 2 })
	assert.Equal(t, 2, v)
	v = c.GetOrElse("b", func() int { calls++; return 3 })
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, calls)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
