package task

import (
	"testing"
	"time"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"", NoColor, false},
		{"#1E88E5", 0x1E88E5, false},
		{"1e88e5", 0x1E88E5, false},
		{"0xFF0000", 0xFF0000, false},
		{"#GGGGGG", NoColor, true},
		{"#1000000", NoColor, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColor_Hex(t *testing.T) {
	if got := Color(0x00AB12).Hex(); got != "#00AB12" {
		t.Errorf("Hex() = %q", got)
	}
	if NoColor.Hex() != "" || NoColor.Valid() {
		t.Error("NoColor should render empty and be invalid")
	}
}

func TestIdentifierFor(t *testing.T) {
	if got := IdentifierFor("com.a/.Main", "com.a"); got != "#ident:com.a/.Main" {
		t.Errorf("IdentifierFor() = %q", got)
	}
	if got := IdentifierFor("", "com.a"); got != "#ident:com.a" {
		t.Errorf("IdentifierFor() = %q", got)
	}
}

func TestCard_Apply(t *testing.T) {
	c := Card{NeedsThumbnail: true}
	icon := &Image{Data: []byte{1}}
	thumb := &Image{Data: []byte{1, 2}}

	c.Apply(FieldIcon, icon)
	c.Apply(FieldThumbnail, thumb)
	c.Apply(FieldTitle, "Music")
	c.Apply(FieldColor, Color(0x123456))
	c.Apply(FieldFavorite, true)
	c.Apply(FieldExpanded, true)
	c.Apply(FieldTitle, 42) // wrong type, ignored

	if c.Icon != icon || c.Thumbnail != thumb || c.NeedsThumbnail {
		t.Errorf("images not applied: %+v", c)
	}
	if c.Title != "Music" || c.Color != 0x123456 || !c.Favorite || !c.Expanded {
		t.Errorf("attributes not applied: %+v", c)
	}
}

func TestMedia_DisplayTitle(t *testing.T) {
	tests := []struct {
		m    Media
		want string
	}{
		{Media{Artist: "Nina", Title: "Sinnerman", Duration: 10*time.Minute + 22*time.Second}, "Nina - Sinnerman - 10:22"},
		{Media{Title: "Intro", Duration: 7 * time.Second}, "Intro - 0:07"},
		{Media{Artist: "Solo"}, "Solo"},
		{Media{}, ""},
	}
	for _, tt := range tests {
		if got := tt.m.DisplayTitle(); got != tt.want {
			t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
		}
	}
	if (Media{}).Active() || !(Media{Package: "p"}).Active() {
		t.Error("Active() mismatch")
	}
}
