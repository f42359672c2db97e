// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package scryfall

import (
	"context"
	"strings"

	"github.com/datawire/dlib/dlog"
)

// FaceMode selects which side(s) of a double-faced or split card to
// render.
type FaceMode int

const (
	FrontOnly FaceMode = iota
	BackOnly
	BothSides
)

func (m FaceMode) String() string {
	switch m {
	case FrontOnly:
		return "front-only"
	case BackOnly:
		return "back-only"
	case BothSides:
		return "both-sides"
	default:
		return "unknown"
	}
}

// Card is a canonical card record: one printing of one named card.
// All string fields are lowercase.  A Card is immutable once built.
//
// Invariant: FrontImageURL is never empty; if BackImageURL is set it
// differs from FrontImageURL.
type Card struct {
	Name     string `json:"name"`
	Set      string `json:"set"`
	Language string `json:"language"`

	FrontImageURL string `json:"frontImageUrl"`
	BackImageURL  string `json:"backImageUrl,omitempty"`

	// MeldResultName is set when this card melds into another; it
	// is the (lowercase) name of the combined card.
	MeldResultName string `json:"meldResultName,omitempty"`
}

// ImagesForFaceMode returns the ordered image URLs to render for this
// card under the given mode.
//
//   - FrontOnly: the front.
//   - BackOnly: the back if there is one, else the front.
//   - BothSides: the front, then the back if there is one.
func (c Card) ImagesForFaceMode(mode FaceMode) []string {
	switch mode {
	case BackOnly:
		if c.BackImageURL != "" {
			return []string{c.BackImageURL}
		}
		return []string{c.FrontImageURL}
	case BothSides:
		if c.BackImageURL != "" {
			return []string{c.FrontImageURL, c.BackImageURL}
		}
		return []string{c.FrontImageURL}
	default:
		return []string{c.FrontImageURL}
	}
}

// rawCard is the subset of the upstream card object that we consume.
type rawCard struct {
	Name      string         `json:"name"`
	Set       string         `json:"set"`
	Lang      string         `json:"lang"`
	Layout    string         `json:"layout"`
	ImageURIs *rawImageURIs  `json:"image_uris"`
	CardFaces []rawCardFace  `json:"card_faces"`
	AllParts  []rawRelatedID `json:"all_parts"`
}

type rawImageURIs struct {
	BorderCrop string `json:"border_crop"`
}

type rawCardFace struct {
	Name      string        `json:"name"`
	ImageURIs *rawImageURIs `json:"image_uris"`
}

type rawRelatedID struct {
	Component string `json:"component"`
	Name      string `json:"name"`
}

// cardFromRaw builds a Card from an upstream record.  Records without
// border-crop artwork for the front face are rejected with an
// *InvalidCardError; the caller drops them.
func cardFromRaw(raw rawCard) (Card, error) {
	card := Card{
		Name:     strings.ToLower(raw.Name),
		Set:      strings.ToLower(raw.Set),
		Language: strings.ToLower(raw.Lang),
	}

	// Double-faced cards carry per-face image_uris; single-faced
	// (including split) cards carry them at the top level.
	switch {
	case len(raw.CardFaces) > 0 && raw.CardFaces[0].ImageURIs != nil:
		card.FrontImageURL = raw.CardFaces[0].ImageURIs.BorderCrop
		if len(raw.CardFaces) > 1 && raw.CardFaces[1].ImageURIs != nil {
			back := raw.CardFaces[1].ImageURIs.BorderCrop
			if back != "" && back != card.FrontImageURL {
				card.BackImageURL = back
			}
		}
	case raw.ImageURIs != nil:
		card.FrontImageURL = raw.ImageURIs.BorderCrop
	}
	if card.FrontImageURL == "" {
		return Card{}, &InvalidCardError{Name: raw.Name, Reason: "no border_crop artwork"}
	}

	if raw.Layout == "meld" {
		for _, part := range raw.AllParts {
			if part.Component == "meld_result" && !strings.EqualFold(part.Name, raw.Name) {
				card.MeldResultName = strings.ToLower(part.Name)
				break
			}
		}
	}

	return card, nil
}

// cardsFromRaw converts a batch of upstream records, dropping (with a
// log line) the ones that are missing required artwork.
func cardsFromRaw(ctx context.Context, raws []rawCard) []Card {
	cards := make([]Card, 0, len(raws))
	for _, raw := range raws {
		card, err := cardFromRaw(raw)
		if err != nil {
			dlog.Infof(ctx, "dropping unusable printing: %v", err)
			continue
		}
		cards = append(cards, card)
	}
	return cards
}
