package loader

import (
	"github.com/Iron-Ham/recents/internal/cache"
	"github.com/Iron-Ham/recents/internal/event"
	"github.com/Iron-Ham/recents/internal/logging"
	"github.com/Iron-Ham/recents/internal/order"
	"github.com/Iron-Ham/recents/internal/session"
	"github.com/Iron-Ham/recents/internal/task"
)

// Defaults for the loader options.
const (
	DefaultAssetWorkers   = 4
	DefaultDeliveryBuffer = 64
	DefaultThumbnailQuota = 5
)

// Config wires the loader to its collaborators. Media is optional; every
// other field is required.
type Config struct {
	Tasks      TaskSource
	Resolver   order.Resolver
	Foreground order.Foreground
	Icons      IconResolver
	Thumbnails ThumbnailResolver
	Media      MediaProvider

	Caches  *cache.Coordinator
	Session *session.Store
	Sink    Sink
}

// Request carries the settings of one load.
type Request struct {
	Order order.Config
	// CardColor overrides every card color when valid.
	CardColor task.Color
	// DefaultColor is used when neither media nor the task supply a color.
	DefaultColor   task.Color
	CornerRadius   float64
	ThumbnailQuota int
}

// Option configures a Loader.
type Option func(*loaderConfig)

type loaderConfig struct {
	logger         *logging.Logger
	bus            *event.Bus
	assetWorkers   int
	deliveryBuffer int
}

// WithLogger sets the logger used by the loader.
func WithLogger(l *logging.Logger) Option {
	return func(c *loaderConfig) {
		c.logger = l
	}
}

// WithBus publishes load, card and asset events on bus.
func WithBus(b *event.Bus) Option {
	return func(c *loaderConfig) {
		c.bus = b
	}
}

// WithAssetWorkers bounds the number of concurrent icon and thumbnail
// requests.
func WithAssetWorkers(n int) Option {
	return func(c *loaderConfig) {
		if n > 0 {
			c.assetWorkers = n
		}
	}
}

// WithDeliveryBuffer sets the capacity of the channel feeding the sink.
func WithDeliveryBuffer(n int) Option {
	return func(c *loaderConfig) {
		if n > 0 {
			c.deliveryBuffer = n
		}
	}
}
