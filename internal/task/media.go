package task

import (
	"fmt"
	"strings"
	"time"
)

// Media describes the track currently playing in some package.
type Media struct {
	Package  string
	Artist   string
	Title    string
	Duration time.Duration
	Color    Color
}

// Active reports whether m names a playing package.
func (m Media) Active() bool {
	return m.Package != ""
}

// DisplayTitle renders the card title for the playing track, e.g.
// "Artist - Song - 3:07". Missing parts are left out.
func (m Media) DisplayTitle() string {
	var parts []string
	if m.Artist != "" {
		parts = append(parts, m.Artist)
	}
	if m.Title != "" {
		parts = append(parts, m.Title)
	}
	if m.Duration > 0 {
		total := int(m.Duration.Round(time.Second) / time.Second)
		parts = append(parts, fmt.Sprintf("%d:%02d", total/60, total%60))
	}
	return strings.Join(parts, " - ")
}
