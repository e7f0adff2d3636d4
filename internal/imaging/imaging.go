// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging inspects uploaded images and produces a variant that fits
// the canvas width. Emails are laid out on an 800px canvas, so anything
// wider is only wasted bytes in the recipient's inbox.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"mime"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// CanvasWidth is the widest an image needs to be on the canvas.
const CanvasWidth = 800

// JPEGQuality is used when re-encoding fitted JPEGs.
const JPEGQuality = 85

// ErrNotImage is returned for content that is not a recognised image.
var ErrNotImage = errors.New("imaging: not an image")

// Sniff detects the MIME type of data from its magic bytes. It returns
// ErrNotImage for anything that is not an image.
func Sniff(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", ErrNotImage
	}
	if !filetype.IsImage(data) {
		return "", fmt.Errorf("%w: %s", ErrNotImage, kind.MIME.Value)
	}
	return kind.MIME.Value, nil
}

// Fitted is the outcome of Fit.
type Fitted struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	// Resized is false when the source already fit and Data is the original.
	Resized bool
}

// Fit scales the image down to maxWidth, preserving the aspect ratio.
// Images that already fit, and formats the decoder does not know, are
// returned unchanged. WebP and GIF sources are re-encoded as PNG.
func Fit(data []byte, maxWidth int) (*Fitted, error) {
	contentType, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	if maxWidth <= 0 {
		maxWidth = CanvasWidth
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Unknown to image.Decode (e.g. SVG, HEIC): keep the original.
		return &Fitted{Data: data, ContentType: contentType}, nil
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth {
		return &Fitted{
			Data:        data,
			ContentType: contentType,
			Width:       bounds.Dx(),
			Height:      bounds.Dy(),
		}, nil
	}

	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
		contentType = "image/jpeg"
	default:
		err = imaging.Encode(&buf, resized, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
		contentType = "image/png"
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode %s: %w", format, err)
	}

	return &Fitted{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       resized.Bounds().Dx(),
		Height:      resized.Bounds().Dy(),
		Resized:     true,
	}, nil
}

// Extension returns the file extension for an image MIME type.
func Extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
