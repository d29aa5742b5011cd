// Package cache owns the three process-wide caches of the recents panel and
// the coupling between them.
//
// Icons and thumbnails are keyed by task identifier and bounded by bytes;
// component infos are keyed by component name and bounded by entry count.
// A thumbnail is only kept while the icon for the same identifier is cached:
// evicting an icon drops its thumbnail, never the other way around.
package cache

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Iron-Ham/recents/internal/event"
	"github.com/Iron-Ham/recents/internal/logging"
	"github.com/Iron-Ham/recents/internal/lru"
	"github.com/Iron-Ham/recents/internal/task"
)

// Cache names used in events and stats.
const (
	NameIcons      = "icons"
	NameThumbnails = "thumbnails"
	NameInfos      = "infos"
)

// Info entry counts kept by the memory-pressure levels.
const (
	moderateInfoEntries = 20
	lowInfoEntries      = 10
)

// ComponentInfo is the resolved metadata of a launchable component.
type ComponentInfo struct {
	Component  string
	Package    string
	Label      string
	IconSource string
	Color      task.Color
}

// TrimLevel is a memory-pressure severity reported by the host.
type TrimLevel int

const (
	// TrimUIHidden is reported when the panel is hidden. Caches are kept.
	TrimUIHidden TrimLevel = iota
	// TrimModerate shrinks icons to a sixth and infos to 20 entries.
	TrimModerate
	// TrimLow shrinks icons to an eighth and infos to 10 entries.
	TrimLow
	// TrimCritical drops every cache.
	TrimCritical
)

// String returns the level name.
func (l TrimLevel) String() string {
	switch l {
	case TrimUIHidden:
		return "ui_hidden"
	case TrimModerate:
		return "moderate"
	case TrimLow:
		return "low"
	case TrimCritical:
		return "critical"
	default:
		return fmt.Sprintf("TrimLevel(%d)", int(l))
	}
}

// ParseTrimLevel parses a level name as printed by String.
func ParseTrimLevel(s string) (TrimLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ui_hidden", "hidden":
		return TrimUIHidden, nil
	case "moderate":
		return TrimModerate, nil
	case "low":
		return TrimLow, nil
	case "critical":
		return TrimCritical, nil
	}
	return TrimUIHidden, fmt.Errorf("unknown trim level %q", s)
}

// Options sizes the caches.
type Options struct {
	IconBytes      int64
	ThumbnailBytes int64
	InfoEntries    int64
	Bus            *event.Bus
	Logger         *logging.Logger
}

// Coordinator holds the icon, thumbnail and component info caches.
type Coordinator struct {
	icons      *lru.Cache[string, task.Image]
	thumbnails *lru.Cache[string, task.Image]
	infos      *lru.Cache[string, ComponentInfo]

	// link serializes thumbnail inserts against icon evictions.
	link sync.Mutex

	bus    *event.Bus
	logger *logging.Logger
}

// New builds the caches and registers the icon to thumbnail eviction listener.
func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	imageCost := func(_ string, img task.Image) int64 { return img.Size() }

	c := &Coordinator{
		icons:      lru.New(lru.Options[string, task.Image]{MaxSize: opts.IconBytes, Cost: imageCost}),
		thumbnails: lru.New(lru.Options[string, task.Image]{MaxSize: opts.ThumbnailBytes, Cost: imageCost}),
		infos:      lru.New(lru.Options[string, ComponentInfo]{MaxSize: opts.InfoEntries}),
		bus:        opts.Bus,
		logger:     logger.WithComponent("cache"),
	}

	c.icons.OnEvict(func(id string, _ task.Image) {
		c.link.Lock()
		c.thumbnails.Remove(id)
		c.link.Unlock()
		c.evicted(NameIcons, id)
	})
	c.thumbnails.OnEvict(func(id string, _ task.Image) {
		c.evicted(NameThumbnails, id)
	})
	c.infos.OnEvict(func(component string, _ ComponentInfo) {
		c.evicted(NameInfos, component)
	})
	return c
}

func (c *Coordinator) evicted(name, key string) {
	c.logger.Debug("cache entry evicted", "cache", name, "key", key)
	c.bus.Publish(event.NewCacheEvictedEvent(name, key))
}

// Icon returns the cached icon for identifier.
func (c *Coordinator) Icon(identifier string) (task.Image, bool) {
	return c.icons.Get(identifier)
}

// PutIcon caches an icon.
func (c *Coordinator) PutIcon(identifier string, img task.Image) {
	c.icons.Put(identifier, img)
}

// Thumbnail returns the cached thumbnail for identifier.
func (c *Coordinator) Thumbnail(identifier string) (task.Image, bool) {
	return c.thumbnails.Get(identifier)
}

// PutThumbnail caches a thumbnail if an icon for the same identifier is
// cached, and reports whether it was stored.
func (c *Coordinator) PutThumbnail(identifier string, img task.Image) bool {
	c.link.Lock()
	defer c.link.Unlock()

	if !c.icons.Contains(identifier) {
		return false
	}
	c.thumbnails.Put(identifier, img)
	return true
}

// Info returns the cached component info.
func (c *Coordinator) Info(component string) (ComponentInfo, bool) {
	return c.infos.Get(component)
}

// PutInfo caches component info.
func (c *Coordinator) PutInfo(component string, info ComponentInfo) {
	c.infos.Put(component, info)
}

// RemoveInfo drops the cached info of one component.
func (c *Coordinator) RemoveInfo(component string) bool {
	return c.infos.Remove(component)
}

// Trim applies a memory-pressure level. TrimUIHidden leaves the caches
// untouched; the panel cancels a pending load for it instead.
func (c *Coordinator) Trim(level TrimLevel) {
	switch level {
	case TrimModerate:
		c.icons.TrimToSize(c.icons.MaxSize() / 6)
		c.infos.TrimToSize(moderateInfoEntries)
	case TrimLow:
		c.icons.TrimToSize(c.icons.MaxSize() / 8)
		c.infos.TrimToSize(lowInfoEntries)
	case TrimCritical:
		c.icons.Clear()
		c.thumbnails.Clear()
		c.infos.Clear()
	default:
		return
	}
	c.logger.Info("caches trimmed",
		"trim_level", level.String(),
		"icons", c.icons.Len(),
		"thumbnails", c.thumbnails.Len(),
		"infos", c.infos.Len())
	c.bus.Publish(event.NewCacheTrimmedEvent(level.String()))
}

// ClearAll drops every cache.
func (c *Coordinator) ClearAll() {
	c.Trim(TrimCritical)
}

// ClearThumbnails drops every thumbnail, used when thumbnails are turned off.
func (c *Coordinator) ClearThumbnails() {
	c.thumbnails.Clear()
}

// RefreshPackage forgets the component infos of pkg so that the next load
// resolves them again. When the package was removed its icons and
// thumbnails are dropped too.
func (c *Coordinator) RefreshPackage(pkg string, removed bool) {
	if pkg == "" {
		return
	}
	dropped := 0
	for _, component := range c.infos.Keys() {
		if belongsTo(component, pkg) && c.infos.Remove(component) {
			dropped++
		}
	}
	if removed {
		for _, id := range c.icons.Keys() {
			if !belongsTo(strings.TrimPrefix(id, task.IdentifierPrefix), pkg) {
				continue
			}
			c.link.Lock()
			c.icons.Remove(id)
			c.thumbnails.Remove(id)
			c.link.Unlock()
			dropped++
		}
	}
	c.logger.Debug("package refreshed", "package", pkg, "removed", removed, "dropped", dropped)
}

// belongsTo reports whether a component name or package name is part of pkg.
func belongsTo(name, pkg string) bool {
	return name == pkg || strings.HasPrefix(name, pkg+"/")
}

// Stats returns per-cache counters keyed by cache name.
func (c *Coordinator) Stats() map[string]lru.Stats {
	return map[string]lru.Stats{
		NameIcons:      c.icons.Stats(),
		NameThumbnails: c.thumbnails.Stats(),
		NameInfos:      c.infos.Stats(),
	}
}
