// Package task defines the data model shared by the recents loading pipeline:
// raw task records handed over by the host, the descriptors derived from them
// for one load, their expand state, and the render-ready cards.
package task

import (
	"fmt"
	"strconv"
	"strings"
)

// IdentifierPrefix marks every descriptor identifier. The remainder is the
// flattened component name, or the package name when no component resolved.
const IdentifierPrefix = "#ident:"

// Color is an RGB color packed as 0xRRGGBB. NoColor marks an absent value.
type Color int64

// NoColor is the zero-information color value.
const NoColor Color = -1

// Valid reports whether c holds a color.
func (c Color) Valid() bool {
	return c >= 0 && c <= 0xFFFFFF
}

// Hex returns the color as "#RRGGBB", or "" when the color is not set.
func (c Color) Hex() string {
	if !c.Valid() {
		return ""
	}
	return fmt.Sprintf("#%06X", int64(c))
}

// ParseColor accepts "#RRGGBB", "RRGGBB" or "0xRRGGBB". An empty string
// yields NoColor.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoColor, nil
	}
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > 0xFFFFFF {
		return NoColor, fmt.Errorf("invalid color %q", s)
	}
	return Color(v), nil
}

// Record is one entry of the host's recent task list. The pipeline never
// mutates it.
type Record struct {
	TaskID       int
	PersistentID int
	// Component is the flattened "package/.Activity" name the task was
	// started with. Empty when the task only carries a package.
	Component    string
	Package      string
	Description  string
	Label        string // label supplied by the task itself, may be empty
	PrimaryColor Color
}

// Descriptor is the per-load view of a resolved task.
type Descriptor struct {
	TaskID       int
	PersistentID int
	Identifier   string
	Component    string
	Package      string
	Label        string
	IconSource   string
	Favorite     bool
	State        ExpandState
	CardColor    Color
}

// IdentifierFor builds the identifier for a resolved component or package.
func IdentifierFor(component, pkg string) string {
	if component != "" {
		return IdentifierPrefix + component
	}
	return IdentifierPrefix + pkg
}

// Image is an opaque image payload held by the icon and thumbnail caches.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Size returns the byte cost of the image.
func (i Image) Size() int64 {
	return int64(len(i.Data))
}

// Card is a render-ready entry of the panel.
type Card struct {
	Identifier     string
	PersistentID   int
	Package        string
	Title          string
	Color          Color
	CornerRadius   float64
	Icon           *Image
	Thumbnail      *Image
	Favorite       bool
	Top            bool
	Expanded       bool
	Expandable     bool
	NeedsThumbnail bool
}

// Field names the part of a card carried by an update event.
type Field string

const (
	FieldIcon      Field = "icon"
	FieldThumbnail Field = "thumbnail"
	FieldTitle     Field = "title"
	FieldColor     Field = "color"
	FieldFavorite  Field = "favorite"
	FieldExpanded  Field = "expanded"
)

// Apply copies an update value into the card. Values of the wrong type for
// the field are ignored.
func (c *Card) Apply(field Field, value any) {
	switch field {
	case FieldIcon:
		if img, ok := value.(*Image); ok {
			c.Icon = img
		}
	case FieldThumbnail:
		if img, ok := value.(*Image); ok {
			c.Thumbnail = img
			c.NeedsThumbnail = false
		}
	case FieldTitle:
		if s, ok := value.(string); ok {
			c.Title = s
		}
	case FieldColor:
		if col, ok := value.(Color); ok {
			c.Color = col
		}
	case FieldFavorite:
		if b, ok := value.(bool); ok {
			c.Favorite = b
		}
	case FieldExpanded:
		if b, ok := value.(bool); ok {
			c.Expanded = b
		}
	}
}
