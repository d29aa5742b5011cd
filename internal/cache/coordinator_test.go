package cache

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/Iron-Ham/recents/internal/event"
	"github.com/Iron-Ham/recents/internal/logging"
	"github.com/Iron-Ham/recents/internal/task"
)

func img(n int) task.Image {
	return task.Image{Data: make([]byte, n), Width: n, Height: 1}
}

func newTestCoordinator(bus *event.Bus) *Coordinator {
	return New(Options{
		IconBytes:      600,
		ThumbnailBytes: 10_000,
		InfoEntries:    30,
		Bus:            bus,
	})
}

func TestIconEvictionDropsThumbnail(t *testing.T) {
	c := newTestCoordinator(nil)

	c.PutIcon("#ident:a", img(300))
	if !c.PutThumbnail("#ident:a", img(1000)) {
		t.Fatal("thumbnail should be stored while the icon is cached")
	}
	c.PutIcon("#ident:b", img(300))
	c.PutIcon("#ident:c", img(300)) // evicts a

	if _, ok := c.Icon("#ident:a"); ok {
		t.Fatal("icon a should have been evicted")
	}
	if _, ok := c.Thumbnail("#ident:a"); ok {
		t.Error("thumbnail a must be gone once its icon is evicted")
	}
}

func TestThumbnailEvictionKeepsIcon(t *testing.T) {
	c := New(Options{IconBytes: 1000, ThumbnailBytes: 100, InfoEntries: 30})

	c.PutIcon("#ident:a", img(10))
	c.PutIcon("#ident:b", img(10))
	c.PutThumbnail("#ident:a", img(80))
	c.PutThumbnail("#ident:b", img(80)) // evicts thumbnail a

	if _, ok := c.Thumbnail("#ident:a"); ok {
		t.Fatal("thumbnail a should have been evicted")
	}
	if _, ok := c.Icon("#ident:a"); !ok {
		t.Error("evicting a thumbnail must not evict its icon")
	}
}

func TestPutThumbnailWithoutIcon(t *testing.T) {
	c := newTestCoordinator(nil)
	if c.PutThumbnail("#ident:orphan", img(10)) {
		t.Error("PutThumbnail should refuse identifiers without an icon")
	}
	if _, ok := c.Thumbnail("#ident:orphan"); ok {
		t.Error("orphan thumbnail was cached")
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		level      TrimLevel
		maxIcons   int64
		maxInfos   int
		thumbsKept bool
	}{
		{TrimModerate, 6000 / 6, 20, true},
		{TrimLow, 6000 / 8, 10, true},
		{TrimCritical, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var trimmed []string
			bus := event.NewBus(nil)
			bus.Subscribe(event.TypeCacheTrimmed, func(e event.Event) {
				trimmed = append(trimmed, e.(event.CacheTrimmedEvent).Level)
			})

			c := New(Options{IconBytes: 6000, ThumbnailBytes: 100_000, InfoEntries: 50, Bus: bus})
			for i := range 30 {
				id := fmt.Sprintf("#ident:p%d", i)
				c.PutIcon(id, img(200))
				c.PutThumbnail(id, img(100))
				c.PutInfo(fmt.Sprintf("p%d/.Main", i), ComponentInfo{Label: "x"})
			}

			c.Trim(tt.level)

			stats := c.Stats()
			if stats[NameIcons].Size > tt.maxIcons {
				t.Errorf("icon size = %d, want <= %d", stats[NameIcons].Size, tt.maxIcons)
			}
			if stats[NameInfos].Len > tt.maxInfos {
				t.Errorf("infos = %d, want <= %d", stats[NameInfos].Len, tt.maxInfos)
			}
			if (stats[NameThumbnails].Len > 0) != tt.thumbsKept {
				t.Errorf("thumbnails = %d, kept = %v", stats[NameThumbnails].Len, tt.thumbsKept)
			}
			// every surviving thumbnail still has its icon
			for i := range 30 {
				id := fmt.Sprintf("#ident:p%d", i)
				if _, ok := c.thumbnails.Get(id); ok && !c.icons.Contains(id) {
					t.Errorf("thumbnail %s outlived its icon", id)
				}
			}
			if len(trimmed) != 1 || trimmed[0] != tt.level.String() {
				t.Errorf("trim events = %v", trimmed)
			}
		})
	}
}

func TestTrimLogKeepsRecordLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(Options{IconBytes: 600, ThumbnailBytes: 600, InfoEntries: 10, Logger: logging.NewWriterLogger(&buf, logging.LevelInfo)})
	c.Trim(TrimModerate)

	entry, err := logging.ParseLogEntry(buf.String())
	if err != nil {
		t.Fatalf("ParseLogEntry() error = %v", err)
	}
	if entry.Level != logging.LevelInfo {
		t.Errorf("level = %q, want %s", entry.Level, logging.LevelInfo)
	}
	if entry.Attrs["trim_level"] != "moderate" {
		t.Errorf("trim_level = %v, want moderate", entry.Attrs["trim_level"])
	}
}

func TestTrimUIHiddenKeepsCaches(t *testing.T) {
	c := newTestCoordinator(nil)
	c.PutIcon("#ident:a", img(10))
	c.Trim(TrimUIHidden)
	if _, ok := c.Icon("#ident:a"); !ok {
		t.Error("ui hidden must not drop cached icons")
	}
}

func TestClearAllAndClearThumbnails(t *testing.T) {
	c := newTestCoordinator(nil)
	c.PutIcon("#ident:a", img(10))
	c.PutThumbnail("#ident:a", img(10))
	c.PutInfo("a/.Main", ComponentInfo{})

	c.ClearThumbnails()
	if _, ok := c.Thumbnail("#ident:a"); ok {
		t.Error("ClearThumbnails left a thumbnail")
	}
	if _, ok := c.Icon("#ident:a"); !ok {
		t.Error("ClearThumbnails dropped an icon")
	}

	c.ClearAll()
	for name, s := range c.Stats() {
		if s.Len != 0 {
			t.Errorf("%s has %d entries after ClearAll", name, s.Len)
		}
	}
}

func TestRefreshPackage(t *testing.T) {
	c := newTestCoordinator(nil)
	c.PutIcon("#ident:com.a/.Main", img(10))
	c.PutThumbnail("#ident:com.a/.Main", img(10))
	c.PutIcon("#ident:com.ab/.Main", img(10))
	c.PutInfo("com.a/.Main", ComponentInfo{Package: "com.a"})
	c.PutInfo("com.ab/.Main", ComponentInfo{Package: "com.ab"})

	c.RefreshPackage("com.a", false)
	if _, ok := c.Info("com.a/.Main"); ok {
		t.Error("info of refreshed package should be dropped")
	}
	if _, ok := c.Info("com.ab/.Main"); !ok {
		t.Error("a package sharing the prefix must be kept")
	}
	if _, ok := c.Icon("#ident:com.a/.Main"); !ok {
		t.Error("icons survive a refresh of an installed package")
	}

	c.RefreshPackage("com.a", true)
	if _, ok := c.Icon("#ident:com.a/.Main"); ok {
		t.Error("icons of a removed package should be dropped")
	}
	if _, ok := c.Thumbnail("#ident:com.a/.Main"); ok {
		t.Error("thumbnails of a removed package should be dropped")
	}
	if _, ok := c.Icon("#ident:com.ab/.Main"); !ok {
		t.Error("unrelated icon dropped")
	}
}

func TestRemoveInfo(t *testing.T) {
	c := newTestCoordinator(nil)
	c.PutInfo("pkg/.Main", ComponentInfo{Component: "pkg/.Main", Label: "Main"})

	if !c.RemoveInfo("pkg/.Main") {
		t.Error("RemoveInfo() = false for a cached component")
	}
	if _, ok := c.Info("pkg/.Main"); ok {
		t.Error("info should be gone")
	}
	if c.RemoveInfo("pkg/.Main") {
		t.Error("RemoveInfo() = true for a missing component")
	}
}

func TestEvictionEvents(t *testing.T) {
	bus := event.NewBus(nil)
	var mu sync.Mutex
	counts := map[string]int{}
	bus.Subscribe(event.TypeCacheEvicted, func(e event.Event) {
		mu.Lock()
		counts[e.(event.CacheEvictedEvent).Cache]++
		mu.Unlock()
	})

	c := newTestCoordinator(bus)
	c.PutIcon("#ident:a", img(400))
	c.PutIcon("#ident:b", img(400))

	if counts[NameIcons] != 1 {
		t.Errorf("icon evictions = %d, want 1", counts[NameIcons])
	}
}

func TestParseTrimLevel(t *testing.T) {
	for _, l := range []TrimLevel{TrimUIHidden, TrimModerate, TrimLow, TrimCritical} {
		got, err := ParseTrimLevel(l.String())
		if err != nil || got != l {
			t.Errorf("ParseTrimLevel(%q) = %v, %v", l.String(), got, err)
		}
	}
	if _, err := ParseTrimLevel("severe"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestThumbnailsFollowIconsUnderConcurrentLoad(t *testing.T) {
	c := New(Options{IconBytes: 2000, ThumbnailBytes: 3000, InfoEntries: 20})

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for range 500 {
				id := fmt.Sprintf("#ident:p%d", r.Intn(40))
				switch r.Intn(4) {
				case 0:
					c.PutIcon(id, img(50+r.Intn(200)))
				case 1:
					c.PutThumbnail(id, img(50+r.Intn(300)))
				case 2:
					c.Trim(TrimModerate)
				default:
					c.Icon(id)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	for _, id := range c.thumbnails.Keys() {
		if !c.icons.Contains(id) {
			t.Errorf("thumbnail %s has no icon", id)
		}
	}
	for name, s := range c.Stats() {
		if s.Size > s.MaxSize {
			t.Errorf("%s size %d exceeds %d", name, s.Size, s.MaxSize)
		}
	}
}
