// Package loader runs the single-flight card load of the recents panel.
//
// A load orders the host's recent tasks, publishes a card for each of them
// to a Sink as soon as its shell is built, and fetches missing icons and
// thumbnails on a bounded worker pool. At most one load runs at a time;
// it can be cancelled between cards and always ends with exactly one
// LoadFinished call.
package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/recents/internal/event"
	rerrors "github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/logging"
	"github.com/Iron-Ham/recents/internal/order"
	"github.com/Iron-Ham/recents/internal/task"
)

// entry is a card published by the latest run.
type entry struct {
	desc           task.Descriptor
	needsThumbnail bool
}

type run struct {
	id        string
	req       Request
	cancelled atomic.Bool
	done      chan struct{}
	delivered chan struct{}
	logger    *logging.Logger
}

func (r *run) stopped(ctx context.Context) bool {
	return r.cancelled.Load() || ctx.Err() != nil
}

// Loader owns the running flag, the published cards and the session store.
type Loader struct {
	cfg    Config
	logger *logging.Logger
	bus    *event.Bus

	mu        sync.Mutex
	current   *run
	latest    *run
	closed    bool
	published []*entry
	index     map[string]*entry
	mode      task.ExpandMode
	last      order.Result

	visible atomic.Bool

	ctx  context.Context
	stop context.CancelFunc

	events       chan delivery
	sendMu       sync.RWMutex
	eventsClosed bool
	dispatched   chan struct{}

	queue *assetQueue
	pool  *pool.Pool
	fed   chan struct{}
}

// New validates cfg and starts the delivery and asset goroutines. Call
// Close to stop them.
func New(cfg Config, opts ...Option) (*Loader, error) {
	switch {
	case cfg.Tasks == nil:
		return nil, errors.New("loader: Tasks is required")
	case cfg.Resolver == nil:
		return nil, errors.New("loader: Resolver is required")
	case cfg.Foreground == nil:
		return nil, errors.New("loader: Foreground is required")
	case cfg.Icons == nil || cfg.Thumbnails == nil:
		return nil, errors.New("loader: Icons and Thumbnails are required")
	case cfg.Caches == nil || cfg.Session == nil:
		return nil, errors.New("loader: Caches and Session are required")
	case cfg.Sink == nil:
		return nil, errors.New("loader: Sink is required")
	}

	lc := loaderConfig{
		assetWorkers:   DefaultAssetWorkers,
		deliveryBuffer: DefaultDeliveryBuffer,
	}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.logger == nil {
		lc.logger = logging.NopLogger()
	}

	ctx, stop := context.WithCancel(context.Background())
	l := &Loader{
		cfg:        cfg,
		logger:     lc.logger.WithComponent("loader"),
		bus:        lc.bus,
		index:      make(map[string]*entry),
		ctx:        ctx,
		stop:       stop,
		events:     make(chan delivery, lc.deliveryBuffer),
		dispatched: make(chan struct{}),
		queue:      newAssetQueue(),
		pool:       pool.New().WithMaxGoroutines(lc.assetWorkers),
		fed:        make(chan struct{}),
	}
	go l.dispatch()
	go l.feed()
	return l, nil
}

// Start begins a load and reports whether it was accepted. A load is
// refused while another one runs, and while the panel is visible; in the
// latter case the sink still receives LoadFinished(false).
func (l *Loader) Start(ctx context.Context, req Request) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	if l.current != nil {
		l.mu.Unlock()
		l.logger.Debug("load refused", "reason", rerrors.ErrLoadInProgress.Error())
		return false
	}
	if l.visible.Load() {
		l.mu.Unlock()
		l.logger.Debug("load refused", "reason", rerrors.ErrPanelVisible.Error())
		l.post(delivery{kind: deliverFinished})
		return false
	}

	r := &run{
		id:        uuid.NewString(),
		req:       req,
		done:      make(chan struct{}),
		delivered: make(chan struct{}),
	}
	r.logger = l.logger.WithRun(r.id)
	if r.req.ThumbnailQuota < 0 {
		r.req.ThumbnailQuota = 0
	}

	// the outgoing cards are remembered before they are replaced
	l.cfg.Session.Snapshot(l.publishedLocked())
	l.published = nil
	l.index = make(map[string]*entry)
	l.mode = req.Order.Mode
	l.current = r
	l.latest = r
	l.mu.Unlock()

	l.post(delivery{kind: deliverStarted, runID: r.id})
	r.logger.Info("load started", "max", req.Order.MaxCount, "mode", req.Order.Mode.String())

	go l.run(ctx, r)
	return true
}

// Cancel asks the running load to stop before its next card. Cards already
// published stay published.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil {
		l.current.cancelled.Store(true)
	}
}

// Loading reports whether a load is running.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current != nil
}

// SetVisible records whether the panel is on screen.
func (l *Loader) SetVisible(visible bool) {
	l.visible.Store(visible)
}

// Visible reports the last value passed to SetVisible.
func (l *Loader) Visible() bool {
	return l.visible.Load()
}

// Wait blocks until the latest load has finished and its LoadFinished call
// has returned. It must not be called from the Sink.
func (l *Loader) Wait() {
	l.mu.Lock()
	r := l.latest
	l.mu.Unlock()
	if r != nil {
		<-r.done
		<-r.delivered
	}
}

func (l *Loader) run(ctx context.Context, r *run) {
	completed, cards := l.execute(ctx, r)

	l.mu.Lock()
	l.cfg.Session.Snapshot(l.publishedLocked())
	l.mu.Unlock()

	if !l.post(delivery{kind: deliverFinished, runID: r.id, completed: completed, cards: cards, ack: r.delivered}) {
		close(r.delivered)
	}
	r.logger.Info("load finished", "completed", completed, "cards", cards)

	l.mu.Lock()
	l.current = nil
	l.mu.Unlock()
	close(r.done)
}

// execute publishes the cards of one run and reports whether it ran to the
// end, along with the number of cards published.
func (l *Loader) execute(ctx context.Context, r *run) (bool, int) {
	records, err := l.cfg.Tasks.RecentTasks(ctx)
	if err != nil {
		lerr := rerrors.NewLoaderError(rerrors.StageRegistry, err).WithRun(r.id)
		r.logger.LogError("recent tasks unavailable", lerr)
		return false, 0
	}
	if r.stopped(ctx) {
		return false, 0
	}

	res := order.Order(records, l.cfg.Session, r.req.Order, order.Env{
		Resolver:   l.cfg.Resolver,
		Foreground: l.cfg.Foreground,
	})
	l.mu.Lock()
	l.last = res
	l.mu.Unlock()
	r.logger.Debug("tasks ordered", "raw", len(records), "visible", len(res.Tasks), "top_in_foreground", res.TopTaskInForeground)

	media := l.nowPlaying(ctx, r)
	thumbnails := 0
	published := 0
	for pos, desc := range res.Tasks {
		if r.stopped(ctx) {
			r.logger.Info("load cancelled", "published", published)
			return false, published
		}

		card, jobs := l.buildCard(r, desc, media, &thumbnails)

		l.mu.Lock()
		e := &entry{desc: desc, needsThumbnail: card.NeedsThumbnail}
		l.published = append(l.published, e)
		l.index[desc.Identifier] = e
		l.mu.Unlock()

		l.post(delivery{kind: deliverCardReady, runID: r.id, card: card, position: pos})
		if published == 0 {
			l.post(delivery{kind: deliverFirstCard, runID: r.id})
		}
		published++

		for _, j := range jobs {
			l.queue.push(j)
		}
	}
	return true, published
}

// buildCard builds the card shell for desc and lists the assets that still
// have to be fetched.
func (l *Loader) buildCard(r *run, desc task.Descriptor, media task.Media, thumbnails *int) (task.Card, []assetJob) {
	mode := r.req.Order.Mode
	card := task.Card{
		Identifier:   desc.Identifier,
		PersistentID: desc.PersistentID,
		Package:      desc.Package,
		Title:        desc.Label,
		CornerRadius: r.req.CornerRadius,
		Favorite:     desc.Favorite,
		Top:          desc.State.Top,
		Expandable:   !desc.State.Top && mode != task.ModeDisabled,
	}
	card.Expanded = card.Expandable && desc.State.Expanded()
	if card.Title == "" {
		card.Title = desc.Package
	}

	playing := media.Active() && media.Package == desc.Package
	if playing {
		if title := media.DisplayTitle(); title != "" {
			card.Title = title
		}
	}
	card.Color = CardColor(r.req.CardColor, playing, media.Color, desc.CardColor, r.req.DefaultColor)

	var icon, thumbnail *assetJob
	if img, ok := l.cfg.Caches.Icon(desc.Identifier); ok {
		card.Icon = &img
	} else {
		icon = &assetJob{kind: assetIcon, desc: desc, runID: r.id}
	}

	if card.Expandable {
		if *thumbnails < r.req.ThumbnailQuota {
			*thumbnails++
			if img, ok := l.cfg.Caches.Thumbnail(desc.Identifier); ok {
				card.Thumbnail = &img
			} else {
				thumbnail = &assetJob{kind: assetThumbnail, desc: desc, runID: r.id}
			}
		} else {
			card.NeedsThumbnail = true
		}
	}

	switch {
	case icon != nil:
		icon.next = thumbnail
		return card, []assetJob{*icon}
	case thumbnail != nil:
		return card, []assetJob{*thumbnail}
	}
	return card, nil
}

// CardColor picks the card background: the user override, then the color
// of the playing media when the card is the media app, then the task color,
// then the theme default.
func CardColor(override task.Color, playing bool, mediaColor, taskColor, fallback task.Color) task.Color {
	switch {
	case override.Valid():
		return override
	case playing && mediaColor.Valid():
		return mediaColor
	case taskColor.Valid():
		return taskColor
	default:
		return fallback
	}
}

func (l *Loader) nowPlaying(ctx context.Context, r *run) (m task.Media) {
	if l.cfg.Media == nil {
		return task.Media{}
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("media provider panicked", "panic", rec)
			m = task.Media{}
		}
	}()
	m, ok := l.cfg.Media.NowPlaying(ctx)
	if !ok {
		return task.Media{}
	}
	return m
}

// LoadThumbnail fetches the deferred thumbnail of a published card. It
// reports false when the card is unknown or takes no thumbnail.
func (l *Loader) LoadThumbnail(identifier string) bool {
	l.mu.Lock()
	e, ok := l.index[identifier]
	if !ok || e.desc.State.Top || l.mode == task.ModeDisabled || l.closed {
		l.mu.Unlock()
		return false
	}
	e.needsThumbnail = false
	desc := e.desc
	runID := ""
	if l.current != nil {
		runID = l.current.id
	}
	l.mu.Unlock()

	if img, ok := l.cfg.Caches.Thumbnail(identifier); ok {
		return l.post(delivery{
			kind:       deliverCardUpdated,
			runID:      runID,
			identifier: identifier,
			field:      task.FieldThumbnail,
			value:      &img,
		})
	}
	return l.queue.push(assetJob{kind: assetThumbnail, desc: desc, runID: runID})
}

// SetExpanded records the user's expand choice for a published card and
// loads its thumbnail when it was deferred. Top cards and cards shown with
// expansion disabled cannot be expanded.
func (l *Loader) SetExpanded(identifier string, expanded bool) (task.ExpandState, error) {
	l.mu.Lock()
	e, ok := l.index[identifier]
	if !ok {
		l.mu.Unlock()
		return task.ExpandState{}, rerrors.NewNotFoundError(identifier)
	}
	if e.desc.State.Top || l.mode == task.ModeDisabled {
		l.mu.Unlock()
		return e.desc.State, rerrors.NewValidationError("card is not expandable").WithField("identifier").WithValue(identifier)
	}
	e.desc.State = e.desc.State.WithUser(expanded)
	state := e.desc.State
	deferred := e.needsThumbnail
	l.cfg.Session.Record(identifier, state)
	l.mu.Unlock()

	if expanded && deferred {
		l.LoadThumbnail(identifier)
	}
	return state, nil
}

// SetFavorite updates the favorite flag of a published card.
func (l *Loader) SetFavorite(identifier string, favorite bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.index[identifier]
	if !ok {
		return false
	}
	e.desc.Favorite = favorite
	return true
}

// Forget removes cards from the published list and their session state.
func (l *Loader) Forget(identifiers ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	drop := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		drop[id] = true
		delete(l.index, id)
		l.cfg.Session.Forget(id)
	}
	kept := l.published[:0]
	for _, e := range l.published {
		if !drop[e.desc.Identifier] {
			kept = append(kept, e)
		}
	}
	l.published = kept
}

// Descriptor returns the descriptor of a published card.
func (l *Loader) Descriptor(identifier string) (task.Descriptor, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.index[identifier]
	if !ok {
		return task.Descriptor{}, false
	}
	return e.desc, true
}

// Published returns the descriptors of the published cards in panel order.
func (l *Loader) Published() []task.Descriptor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.publishedLocked()
}

func (l *Loader) publishedLocked() []task.Descriptor {
	out := make([]task.Descriptor, len(l.published))
	for i, e := range l.published {
		out[i] = e.desc
	}
	return out
}

// LastResult returns the ordering result of the latest run.
func (l *Loader) LastResult() order.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Close cancels the running load, waits for in-flight assets to be
// delivered and stops the delivery goroutine. The loader cannot be reused.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	r := l.current
	if r != nil {
		r.cancelled.Store(true)
	}
	l.mu.Unlock()

	if r != nil {
		<-r.done
	}

	l.queue.close()
	<-l.fed
	l.pool.Wait()
	l.stop()

	l.sendMu.Lock()
	l.eventsClosed = true
	close(l.events)
	l.sendMu.Unlock()
	<-l.dispatched
}
