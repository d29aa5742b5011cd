package host

import (
	"bytes"
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/task"
)

// Base image dimensions before scaling.
const (
	IconSize        = 48
	ThumbnailWidth  = 90
	ThumbnailHeight = 160
)

// Images renders deterministic placeholder icons and thumbnails. Every
// image payload starts with its glyph followed by a zero byte, then the
// card color, repeated to one byte per pixel.
type Images struct {
	registry *Registry
	scale    float64
}

// NewImages creates an image source. A scale <= 0 is treated as 1.
func NewImages(registry *Registry, scale float64) *Images {
	if scale <= 0 {
		scale = 1
	}
	return &Images{registry: registry, scale: scale}
}

// Icon implements loader.IconResolver.
func (i *Images) Icon(ctx context.Context, desc task.Descriptor) (task.Image, error) {
	if err := ctx.Err(); err != nil {
		return task.Image{}, err
	}
	side := i.scaled(IconSize)
	return render(Glyph(desc), desc.CardColor, side, side), nil
}

// Thumbnail implements loader.ThumbnailResolver. Secure tasks have none.
func (i *Images) Thumbnail(ctx context.Context, desc task.Descriptor) (task.Image, error) {
	if err := ctx.Err(); err != nil {
		return task.Image{}, err
	}
	if e, ok := i.registry.Task(desc.PersistentID); ok && e.Secure {
		return task.Image{}, errors.ErrAssetUnavailable
	}
	label := desc.Label
	if label == "" {
		label = desc.Package
	}
	return render(label, desc.CardColor, i.scaled(ThumbnailWidth), i.scaled(ThumbnailHeight)), nil
}

func (i *Images) scaled(n int) int {
	return max(int(float64(n)*i.scale), 1)
}

// Glyph returns the icon glyph of desc: its icon source, or the upper-cased
// first letter of its label or package.
func Glyph(desc task.Descriptor) string {
	if desc.IconSource != "" {
		return desc.IconSource
	}
	name := desc.Label
	if name == "" {
		name = desc.Package
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

func render(glyph string, color task.Color, w, h int) task.Image {
	header := glyph + "\x00" + color.Hex()
	n := w * h
	data := bytes.Repeat([]byte(header+";"), n/(len(header)+1)+1)
	return task.Image{Data: data[:max(n, len(header))], Width: w, Height: h}
}

// Caption returns the glyph or label an image was rendered from.
func Caption(img *task.Image) string {
	if img == nil {
		return ""
	}
	head, _, _ := strings.Cut(string(img.Data), "\x00")
	return head
}
