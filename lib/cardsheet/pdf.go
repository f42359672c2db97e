// Copyright (C) 2025-2026  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package cardsheet

import (
	"context"
	"fmt"

	"git.lukeshu.com/cardsheet/lib/deck"
)

// PdfOptions is the page and grid geometry handed to the composer.
// Lengths are millimeters.
type PdfOptions struct {
	PageWidth  float64
	PageHeight float64
	Columns    int
	Rows       int
	Margin     float64
	Spacing    float64
}

// DefaultPdfOptions is 3x3 cards on A4, the usual proxy-sheet layout.
var DefaultPdfOptions = PdfOptions{
	PageWidth:  210,
	PageHeight: 297,
	Columns:    3,
	Rows:       3,
	Margin:     5,
	Spacing:    0.5,
}

// PdfComposer lays decoded card images out on grid pages and renders
// them to a byte stream.  Implementations live outside this module;
// the pipeline only defines what they consume: the ordered image
// sequence from ExpandCardsToImageURLs, already fetched to bytes.
type PdfComposer interface {
	Compose(ctx context.Context, images [][]byte, opts PdfOptions) ([]byte, error)
}

// PdfError is a failure inside the composer.
type PdfError struct {
	Err error
}

func (e *PdfError) Error() string { return fmt.Sprintf("compose pdf: %v", e.Err) }
func (e *PdfError) Unwrap() error { return e.Err }

// GeneratePDFFromEntries runs the whole foreground pipeline: resolve
// entries to printings, expand to the image sequence, fetch every
// image (unlike background loading, a fetch failure here aborts the
// job), and hand the bytes to the composer.
//
// progress, if non-nil, is called after each image fetch with how
// many of the total images are in hand.
func (o *Orchestrator) GeneratePDFFromEntries(ctx context.Context, entries []deck.Entry, opts PdfOptions, composer PdfComposer, progress func(done, total int)) ([]byte, error) {
	cards := o.ResolveEntriesToCards(ctx, entries)
	urls := ExpandCardsToImageURLs(cards)
	images := make([][]byte, 0, len(urls))
	for _, url := range urls {
		img, err := o.FetchImage(ctx, url)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
		if progress != nil {
			progress(len(images), len(urls))
		}
	}
	out, err := composer.Compose(ctx, images, opts)
	if err != nil {
		return nil, &PdfError{Err: err}
	}
	return out, nil
}
