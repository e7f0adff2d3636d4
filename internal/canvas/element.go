// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package canvas

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/h2non/filetype"

	"mailcanvas/internal/models"
)

// Fallbacks used when the active style set leaves a value empty.
const (
	DefaultFontFamily = "Arial"
	DefaultFill       = "#000000"
	DefaultAlign      = "left"
)

// Placement of newly created elements.
const (
	TitleX, TitleY     = 50, 50
	ContentX, ContentY = 50, 120
	ImageX, ImageY     = 50, 50
	TitleFontSize      = 24
)

// Factory creates elements with session-unique ids.
type Factory struct {
	ids *IDGenerator
}

// NewFactory returns a Factory issuing ids from ids.
func NewFactory(ids *IDGenerator) *Factory {
	return &Factory{ids: ids}
}

// NewTitle creates a bold, centered 24px text element. Only the font family
// and fill come from the style set. Any non-empty value is accepted as typed,
// whitespace included.
func (f *Factory) NewTitle(value string, styles models.StyleSet) (models.Element, error) {
	if value == "" {
		return models.Element{}, &ValidationError{Field: "title", Message: "please enter a title"}
	}
	return models.Element{
		ID:         f.ids.Next(KindTitle),
		Type:       models.ElementText,
		X:          TitleX,
		Y:          TitleY,
		Text:       value,
		FontSize:   TitleFontSize,
		FontFamily: orDefault(styles.ContentFont, DefaultFontFamily),
		Fill:       orDefault(styles.TextColor, DefaultFill),
		TextAlign:  "center",
		FontWeight: "bold",
	}, nil
}

// NewContent creates a body text element sized from the style set's size
// token.
func (f *Factory) NewContent(value string, styles models.StyleSet) (models.Element, error) {
	if value == "" {
		return models.Element{}, &ValidationError{Field: "content", Message: "please enter content"}
	}
	return models.Element{
		ID:         f.ids.Next(KindContent),
		Type:       models.ElementText,
		X:          ContentX,
		Y:          ContentY,
		Text:       value,
		FontSize:   FontSize(styles.ContentSize),
		FontFamily: orDefault(styles.ContentFont, DefaultFontFamily),
		Fill:       orDefault(styles.TextColor, DefaultFill),
		TextAlign:  orDefault(styles.Alignment, DefaultAlign),
	}, nil
}

// NewImage creates an image element for src, which is either a remote URL
// or a data URI produced by EncodeDataURI.
func (f *Factory) NewImage(src string) (models.Element, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return models.Element{}, &ValidationError{Field: "src", Message: "image source is required"}
	}
	return models.Element{
		ID:   f.ids.Next(KindImage),
		Type: models.ElementImage,
		X:    ImageX,
		Y:    ImageY,
		Src:  src,
	}, nil
}

// EncodeDataURI reads an image fully and returns it as a base64 data URI.
// An empty contentType is sniffed from the content; anything that is not an
// image is rejected.
func EncodeDataURI(ctx context.Context, r io.Reader, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, contextReader{ctx: ctx, r: r}); err != nil {
		return "", &IOError{Op: "read image", Err: err}
	}
	data := buf.Bytes()
	if len(data) == 0 {
		return "", &ValidationError{Field: "image", Message: "image file is empty"}
	}

	if contentType == "" {
		kind, err := filetype.Match(data)
		if err != nil || kind == filetype.Unknown {
			return "", &ValidationError{Field: "image", Message: "unrecognized file type"}
		}
		contentType = kind.MIME.Value
	}
	if !IsImageType(contentType) {
		return "", &ValidationError{Field: "image", Message: fmt.Sprintf("%s is not an image", contentType)}
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// IsImageType reports whether a MIME type names an image.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
