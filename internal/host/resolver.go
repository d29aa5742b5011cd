package host

import (
	"context"
	"strings"

	"github.com/Iron-Ham/recents/internal/cache"
	"github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/task"
)

// Resolver resolves task records against the registry's apps table. Found
// metadata is kept in the component info cache, so a task stays resolvable
// while its info is cached even if the apps table changes.
type Resolver struct {
	registry *Registry
	caches   *cache.Coordinator
}

// NewResolver creates a Resolver.
func NewResolver(registry *Registry, caches *cache.Coordinator) *Resolver {
	return &Resolver{registry: registry, caches: caches}
}

// Resolve implements order.Resolver.
func (r *Resolver) Resolve(rec task.Record) (task.Descriptor, error) {
	if rec.Package == "" {
		return task.Descriptor{}, errors.ErrUnresolvable
	}
	component := rec.Component
	if component != "" && !strings.HasPrefix(component, rec.Package+"/") {
		return task.Descriptor{}, errors.ErrUnresolvable
	}
	key := component
	if key == "" {
		key = rec.Package
	}

	info, ok := r.caches.Info(key)
	if !ok {
		app, found := r.registry.App(component, rec.Package)
		if !found {
			return task.Descriptor{}, errors.ErrUnresolvable
		}
		color, err := task.ParseColor(app.Color)
		if err != nil {
			color = task.NoColor
		}
		info = cache.ComponentInfo{
			Component:  component,
			Package:    rec.Package,
			Label:      app.Label,
			IconSource: app.Icon,
			Color:      color,
		}
		r.caches.PutInfo(key, info)
	}

	label := rec.Label
	if label == "" {
		label = info.Label
	}
	color := rec.PrimaryColor
	if !color.Valid() {
		color = info.Color
	}
	return task.Descriptor{
		TaskID:       rec.TaskID,
		PersistentID: rec.PersistentID,
		Identifier:   task.IdentifierFor(component, rec.Package),
		Component:    component,
		Package:      rec.Package,
		Label:        label,
		IconSource:   info.IconSource,
		CardColor:    color,
	}, nil
}

// Foreground reports the task flagged "foreground" in the registry.
type Foreground struct {
	registry *Registry
}

// NewForeground creates a Foreground detector.
func NewForeground(registry *Registry) *Foreground {
	return &Foreground{registry: registry}
}

// IsForeground implements order.Foreground.
func (f *Foreground) IsForeground(rec task.Record) bool {
	e, ok := f.registry.Task(rec.PersistentID)
	return ok && e.Foreground
}

// Media reports the registry's media block.
type Media struct {
	registry *Registry
}

// NewMedia creates a Media provider.
func NewMedia(registry *Registry) *Media {
	return &Media{registry: registry}
}

// NowPlaying implements loader.MediaProvider.
func (m *Media) NowPlaying(ctx context.Context) (task.Media, bool) {
	if ctx.Err() != nil {
		return task.Media{}, false
	}
	e, ok := m.registry.Media()
	if !ok || e.Package == "" {
		return task.Media{}, false
	}
	color, err := task.ParseColor(e.Color)
	if err != nil {
		color = task.NoColor
	}
	return task.Media{
		Package:  e.Package,
		Artist:   e.Artist,
		Title:    e.Title,
		Duration: e.Duration,
		Color:    color,
	}, true
}
