// Package recents is the host-facing surface of the recents panel.
//
// A Panel owns one loader, the caches it feeds and the session store. The
// host starts and cancels loads, applies configuration, reacts to memory
// pressure and forwards the user's card actions; cards flow back to the
// host through a loader.Sink.
package recents

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/Iron-Ham/recents/internal/cache"
	"github.com/Iron-Ham/recents/internal/config"
	rerrors "github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/event"
	"github.com/Iron-Ham/recents/internal/loader"
	"github.com/Iron-Ham/recents/internal/logging"
	"github.com/Iron-Ham/recents/internal/lru"
	"github.com/Iron-Ham/recents/internal/order"
	"github.com/Iron-Ham/recents/internal/session"
	"github.com/Iron-Ham/recents/internal/task"
)

// Registry is the host's list of recent tasks.
type Registry interface {
	loader.TaskSource
	RemoveTask(ctx context.Context, persistentID int) error
}

// Config wires a Panel to the host. Media and Host are optional.
type Config struct {
	Registry   Registry
	Resolver   order.Resolver
	Foreground order.Foreground
	Icons      loader.IconResolver
	Thumbnails loader.ThumbnailResolver
	Media      loader.MediaProvider
	Caches     *cache.Coordinator

	// Host receives every card of every load.
	Host loader.Sink

	Settings     config.PanelConfig
	DefaultColor task.Color
}

// Option configures a Panel.
type Option func(*panelOptions)

type panelOptions struct {
	logger     *logging.Logger
	bus        *event.Bus
	loaderOpts []loader.Option
}

// WithLogger sets the logger of the panel and its loader.
func WithLogger(l *logging.Logger) Option {
	return func(o *panelOptions) {
		o.logger = l
	}
}

// WithBus publishes panel and loader events on bus.
func WithBus(b *event.Bus) Option {
	return func(o *panelOptions) {
		o.bus = b
	}
}

// WithLoaderOptions passes extra options to the loader.
func WithLoaderOptions(opts ...loader.Option) Option {
	return func(o *panelOptions) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}

// Panel is safe for concurrent use.
type Panel struct {
	loader   *loader.Loader
	caches   *cache.Coordinator
	session  *session.Store
	registry Registry
	media    loader.MediaProvider
	host     loader.Sink
	bus      *event.Bus
	logger   *logging.Logger
	fallback task.Color

	mu       sync.Mutex
	settings config.PanelConfig
	override task.Media
	cards    []task.Card
}

// New creates a Panel and its loader.
func New(cfg Config, opts ...Option) (*Panel, error) {
	if cfg.Registry == nil {
		return nil, errors.New("recents: Registry is required")
	}
	var po panelOptions
	for _, opt := range opts {
		opt(&po)
	}
	if po.logger == nil {
		po.logger = logging.NopLogger()
	}

	settings := cfg.Settings
	settings.Normalize()
	p := &Panel{
		caches:   cfg.Caches,
		session:  session.NewStore(),
		registry: cfg.Registry,
		media:    cfg.Media,
		host:     cfg.Host,
		bus:      po.bus,
		logger:   po.logger.WithComponent("panel"),
		fallback: cfg.DefaultColor,
		settings: settings,
	}

	loaderOpts := append([]loader.Option{
		loader.WithLogger(po.logger),
		loader.WithBus(po.bus),
	}, po.loaderOpts...)
	l, err := loader.New(loader.Config{
		Tasks:      cfg.Registry,
		Resolver:   cfg.Resolver,
		Foreground: cfg.Foreground,
		Icons:      cfg.Icons,
		Thumbnails: cfg.Thumbnails,
		Media:      mediaSource{p},
		Caches:     cfg.Caches,
		Session:    p.session,
		Sink:       panelSink{p},
	}, loaderOpts...)
	if err != nil {
		return nil, err
	}
	p.loader = l
	return p, nil
}

// StartLoad starts a load with the current settings.
func (p *Panel) StartLoad(ctx context.Context) bool {
	return p.loader.Start(ctx, p.request())
}

func (p *Panel) request() loader.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.settings
	return loader.Request{
		Order: order.Config{
			Blacklist:          order.NewSet(s.Blacklist...),
			Favorites:          order.NewSet(s.Favorites...),
			MaxCount:           s.MaxTasks,
			FirstExpandedCount: s.FirstExpanded,
			Mode:               s.Mode(),
		},
		CardColor:      s.Color(),
		DefaultColor:   p.fallback,
		CornerRadius:   s.CornerRadius * scale(s.ScaleFactor),
		ThumbnailQuota: s.ThumbnailQuota,
	}
}

func scale(f float64) float64 {
	if f <= 0 {
		return 1
	}
	return f
}

// CancelLoad stops the running load before its next card.
func (p *Panel) CancelLoad() {
	p.loader.Cancel()
}

// IsLoading reports whether a load is running.
func (p *Panel) IsLoading() bool {
	return p.loader.Loading()
}

// SetVisible records whether the panel is on screen. Loads are refused
// while it is.
func (p *Panel) SetVisible(visible bool) {
	p.loader.SetVisible(visible)
}

// Wait blocks until the latest load has been delivered.
func (p *Panel) Wait() {
	p.loader.Wait()
}

// Close stops the loader. Pending asset updates are delivered first.
func (p *Panel) Close() {
	p.loader.Close()
}

// ApplyConfig replaces the panel settings used by the next load. Turning
// expansion off drops every cached thumbnail.
func (p *Panel) ApplyConfig(pc config.PanelConfig) error {
	if _, err := task.ParseExpandMode(pc.ExpandMode); err != nil {
		return rerrors.NewValidationError(err.Error()).WithField("expand_mode").WithValue(pc.ExpandMode)
	}
	if _, err := task.ParseColor(pc.CardColor); err != nil {
		return rerrors.NewValidationError(err.Error()).WithField("card_color").WithValue(pc.CardColor)
	}
	pc.Normalize()

	p.mu.Lock()
	was := p.settings.Mode()
	p.settings = pc
	p.mu.Unlock()

	if pc.Mode() == task.ModeDisabled && was != task.ModeDisabled {
		p.caches.ClearThumbnails()
	}
	p.logger.Debug("panel config applied",
		"mode", pc.Mode().String(),
		"max_tasks", pc.MaxTasks,
		"favorites", len(pc.Favorites))
	return nil
}

// Settings returns the current panel settings.
func (p *Panel) Settings() config.PanelConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.settings
	s.Blacklist = slices.Clone(s.Blacklist)
	s.Favorites = slices.Clone(s.Favorites)
	return s
}

// OnTrim reacts to memory pressure. Hiding the UI cancels a pending load;
// the other levels shrink the caches.
func (p *Panel) OnTrim(level cache.TrimLevel) {
	if level == cache.TrimUIHidden {
		p.CancelLoad()
	}
	p.caches.Trim(level)
}

// OnClearAll cancels the load and empties every cache.
func (p *Panel) OnClearAll() {
	p.CancelLoad()
	p.caches.ClearAll()
}

// RemoveTask removes a published task from the host and forgets it.
func (p *Panel) RemoveTask(ctx context.Context, identifier string) error {
	desc, ok := p.loader.Descriptor(identifier)
	if !ok {
		return rerrors.NewNotFoundError(identifier)
	}
	if err := p.registry.RemoveTask(ctx, desc.PersistentID); err != nil {
		return rerrors.NewRegistryError("remove task", err).WithTask(desc.PersistentID)
	}
	p.forget(desc)
	p.logger.WithIdentifier(identifier).Info("task removed", "persistent_id", desc.PersistentID)
	return nil
}

func (p *Panel) forget(descs ...task.Descriptor) {
	ids := make([]string, len(descs))
	for i, d := range descs {
		ids[i] = d.Identifier
		if d.Component != "" {
			p.caches.RemoveInfo(d.Component)
		}
	}
	p.loader.Forget(ids...)

	p.mu.Lock()
	p.cards = slices.DeleteFunc(p.cards, func(c task.Card) bool {
		return slices.Contains(ids, c.Identifier)
	})
	p.mu.Unlock()

	for _, d := range descs {
		p.bus.Publish(event.NewTaskRemovedEvent(d.Identifier, d.PersistentID))
	}
}

// RemoveAllExceptFavorites removes every task that is not a favorite, both
// from the panel and from the host registry. It reports whether at least
// one favorite card remains.
func (p *Panel) RemoveAllExceptFavorites(ctx context.Context) bool {
	keep := make(map[int]bool)
	favorites := make(map[string]bool)
	var drop []task.Descriptor
	for _, d := range p.loader.Published() {
		if d.Favorite {
			keep[d.PersistentID] = true
			favorites[d.Identifier] = true
			continue
		}
		drop = append(drop, d)
	}
	p.forget(drop...)
	// Unpublished tasks go too.
	p.session.Retain(func(id string) bool { return favorites[id] })

	records, err := p.registry.RecentTasks(ctx)
	if err != nil {
		p.logger.Warn("recent tasks unavailable", "error", err.Error())
	}
	removed := 0
	for _, rec := range records {
		if keep[rec.PersistentID] {
			continue
		}
		if err := p.registry.RemoveTask(ctx, rec.PersistentID); err != nil {
			rerr := rerrors.NewRegistryError("remove task", err).WithTask(rec.PersistentID)
			p.logger.LogError("task not removed", rerr)
			continue
		}
		removed++
	}
	p.logger.Info("tasks cleared", "removed", removed, "favorites", len(keep))
	return len(keep) > 0
}

// ToggleFavorite flips the favorite flag of identifier and returns the new
// value. The change is kept in the settings, so it survives reloads.
func (p *Panel) ToggleFavorite(identifier string) bool {
	p.mu.Lock()
	fav := !slices.Contains(p.settings.Favorites, identifier)
	if fav {
		p.settings.Favorites = append(p.settings.Favorites, identifier)
	} else {
		p.settings.Favorites = slices.DeleteFunc(slices.Clone(p.settings.Favorites), func(s string) bool {
			return s == identifier
		})
	}
	if i := p.cardIndex(identifier); i >= 0 {
		p.cards[i].Favorite = fav
	}
	p.mu.Unlock()

	p.loader.SetFavorite(identifier, fav)
	return fav
}

// SetExpanded records the user's expand choice for a card and loads its
// thumbnail when it was deferred.
func (p *Panel) SetExpanded(identifier string, expanded bool) error {
	state, err := p.loader.SetExpanded(identifier, expanded)
	if err != nil {
		return err
	}
	p.mu.Lock()
	if i := p.cardIndex(identifier); i >= 0 {
		p.cards[i].Expanded = state.Expanded()
	}
	p.mu.Unlock()
	return nil
}

// OpenLastApp returns the task to switch to: the most recent task when the
// top task is not in the foreground, otherwise the one before it.
func (p *Panel) OpenLastApp() (task.Descriptor, bool) {
	res := p.loader.LastResult()
	i := 0
	if res.TopTaskInForeground {
		i = 1
	}
	if i >= len(res.QuickSwitch) {
		return task.Descriptor{}, false
	}
	return res.QuickSwitch[i], true
}

// SetMedia overrides the media provider until cleared with a zero Media.
// It applies from the next load.
func (p *Panel) SetMedia(m task.Media) {
	p.mu.Lock()
	p.override = m
	p.mu.Unlock()
}

// RefreshPackage drops cached data of pkg after it was updated or removed.
func (p *Panel) RefreshPackage(pkg string, removed bool) {
	p.caches.RefreshPackage(pkg, removed)
}

// Cards returns the cards of the latest load, with the updates received
// so far applied.
func (p *Panel) Cards() []task.Card {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.cards)
}

// HasFavorite reports whether a published card is a favorite.
func (p *Panel) HasFavorite() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.ContainsFunc(p.cards, func(c task.Card) bool { return c.Favorite })
}

// HasClearableTasks reports whether a published card is not a favorite.
func (p *Panel) HasClearableTasks() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.ContainsFunc(p.cards, func(c task.Card) bool { return !c.Favorite })
}

// CacheStats returns the counters of the caches, keyed by cache name.
func (p *Panel) CacheStats() map[string]lru.Stats {
	return p.caches.Stats()
}

// Session returns the identifiers whose expand state is remembered.
func (p *Panel) Session() []string {
	return p.session.Identifiers()
}

// cardIndex must be called with mu held.
func (p *Panel) cardIndex(identifier string) int {
	return slices.IndexFunc(p.cards, func(c task.Card) bool { return c.Identifier == identifier })
}
