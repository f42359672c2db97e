// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package scryfall

import (
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagesForFaceMode(t *testing.T) {
	t.Parallel()

	single := Card{Name: "lightning bolt", FrontImageURL: "https://img/front.jpg"}
	double := Card{
		Name:          "delver of secrets // insectile aberration",
		FrontImageURL: "https://img/front.jpg",
		BackImageURL:  "https://img/back.jpg",
	}

	assert.Equal(t, []string{"https://img/front.jpg"}, single.ImagesForFaceMode(FrontOnly))
	assert.Equal(t, []string{"https://img/front.jpg"}, single.ImagesForFaceMode(BackOnly))
	assert.Equal(t, []string{"https://img/front.jpg"}, single.ImagesForFaceMode(BothSides))

	assert.Equal(t, []string{"https://img/front.jpg"}, double.ImagesForFaceMode(FrontOnly))
	assert.Equal(t, []string{"https://img/back.jpg"}, double.ImagesForFaceMode(BackOnly))
	assert.Equal(t, []string{"https://img/front.jpg", "https://img/back.jpg"}, double.ImagesForFaceMode(BothSides))
}

func TestCardFromRaw(t *testing.T) {
	t.Parallel()

	t.Run("single-faced", func(t *testing.T) {
		t.Parallel()
		card, err := cardFromRaw(rawCard{
			Name:      "Lightning Bolt",
			Set:       "LEA",
			Lang:      "EN",
			Layout:    "normal",
			ImageURIs: &rawImageURIs{BorderCrop: "https://img/bolt.jpg"},
		})
		require.NoError(t, err)
		assert.Equal(t, "lightning bolt", card.Name)
		assert.Equal(t, "lea", card.Set)
		assert.Equal(t, "en", card.Language)
		assert.Equal(t, "https://img/bolt.jpg", card.FrontImageURL)
		assert.Empty(t, card.BackImageURL)
	})

	t.Run("double-faced", func(t *testing.T) {
		t.Parallel()
		card, err := cardFromRaw(rawCard{
			Name:   "Delver of Secrets // Insectile Aberration",
			Set:    "isd",
			Lang:   "en",
			Layout: "transform",
			CardFaces: []rawCardFace{
				{Name: "Delver of Secrets", ImageURIs: &rawImageURIs{BorderCrop: "https://img/front.jpg"}},
				{Name: "Insectile Aberration", ImageURIs: &rawImageURIs{BorderCrop: "https://img/back.jpg"}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "https://img/front.jpg", card.FrontImageURL)
		assert.Equal(t, "https://img/back.jpg", card.BackImageURL)
	})

	t.Run("meld", func(t *testing.T) {
		t.Parallel()
		card, err := cardFromRaw(rawCard{
			Name:      "Gisela, the Broken Blade",
			Set:       "emn",
			Lang:      "en",
			Layout:    "meld",
			ImageURIs: &rawImageURIs{BorderCrop: "https://img/gisela.jpg"},
			AllParts: []rawRelatedID{
				{Component: "meld_part", Name: "Gisela, the Broken Blade"},
				{Component: "meld_part", Name: "Bruna, the Fading Light"},
				{Component: "meld_result", Name: "Brisela, Voice of Nightmares"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "brisela, voice of nightmares", card.MeldResultName)
	})

	t.Run("missing artwork", func(t *testing.T) {
		t.Parallel()
		_, err := cardFromRaw(rawCard{
			Name:   "Textless Promo",
			Set:    "promo",
			Lang:   "en",
			Layout: "normal",
		})
		var invErr *InvalidCardError
		require.ErrorAs(t, err, &invErr)
	})
}

func TestCardsFromRawDropsInvalid(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	cards := cardsFromRaw(ctx, []rawCard{
		{Name: "Good", Set: "a", Lang: "en", ImageURIs: &rawImageURIs{BorderCrop: "https://img/1.jpg"}},
		{Name: "Bad", Set: "a", Lang: "en"},
		{Name: "Also Good", Set: "a", Lang: "en", ImageURIs: &rawImageURIs{BorderCrop: "https://img/2.jpg"}},
	})
	require.Len(t, cards, 2)
	assert.Equal(t, "good", cards[0].Name)
	assert.Equal(t, "also good", cards[1].Name)
}
