package host

import (
	"context"
	"testing"

	"github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/task"
)

func TestGlyph(t *testing.T) {
	tests := []struct {
		name string
		desc task.Descriptor
		want string
	}{
		{"icon source", task.Descriptor{IconSource: "♪", Label: "Music"}, "♪"},
		{"label", task.Descriptor{Label: "mail", Package: "org.example.mail"}, "M"},
		{"package", task.Descriptor{Package: "org.example.notes"}, "O"},
		{"nothing", task.Descriptor{}, "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Glyph(tt.desc); got != tt.want {
				t.Errorf("Glyph() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImages_Icon(t *testing.T) {
	imgs := NewImages(loadedRegistry(t), 0.5)
	desc := task.Descriptor{IconSource: "M", CardColor: 0x4285F4}

	img, err := imgs.Icon(context.Background(), desc)
	if err != nil {
		t.Fatalf("Icon() error = %v", err)
	}
	if img.Width != IconSize/2 || img.Height != IconSize/2 {
		t.Errorf("icon size = %dx%d", img.Width, img.Height)
	}
	if img.Size() != int64(img.Width*img.Height) {
		t.Errorf("icon cost = %d, want one byte per pixel", img.Size())
	}
	if got := Caption(&img); got != "M" {
		t.Errorf("Caption() = %q, want M", got)
	}

	again, _ := imgs.Icon(context.Background(), desc)
	if string(again.Data) != string(img.Data) {
		t.Error("icons should be deterministic")
	}
}

func TestImages_Thumbnail(t *testing.T) {
	imgs := NewImages(loadedRegistry(t), 1)

	img, err := imgs.Thumbnail(context.Background(), task.Descriptor{PersistentID: 102, Label: "Music"})
	if err != nil {
		t.Fatalf("Thumbnail() error = %v", err)
	}
	if img.Width != ThumbnailWidth || img.Height != ThumbnailHeight {
		t.Errorf("thumbnail size = %dx%d", img.Width, img.Height)
	}
	if got := Caption(&img); got != "Music" {
		t.Errorf("Caption() = %q", got)
	}

	_, err = imgs.Thumbnail(context.Background(), task.Descriptor{PersistentID: 105, Label: "Bank"})
	if !errors.Is(err, errors.ErrAssetUnavailable) {
		t.Errorf("secure Thumbnail() error = %v, want ErrAssetUnavailable", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := imgs.Thumbnail(ctx, task.Descriptor{PersistentID: 102}); err == nil {
		t.Error("Thumbnail() with a cancelled context should fail")
	}
}

func TestCaption_Nil(t *testing.T) {
	if got := Caption(nil); got != "" {
		t.Errorf("Caption(nil) = %q", got)
	}
}
