package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/recents/internal/cache"
	"github.com/Iron-Ham/recents/internal/config"
	"github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/event"
	"github.com/Iron-Ham/recents/internal/host"
	"github.com/Iron-Ham/recents/internal/loader"
	"github.com/Iron-Ham/recents/internal/logging"
	"github.com/Iron-Ham/recents/internal/recents"
	"github.com/Iron-Ham/recents/internal/task"
)

// defaultCardColor is used when neither the task nor its app sets a color.
const defaultCardColor task.Color = 0x37474F

// runtime holds the collaborators of one command invocation.
type runtime struct {
	cfg      *config.Config
	logger   *logging.Logger
	bus      *event.Bus
	registry *host.Registry
	caches   *cache.Coordinator
	panel    *recents.Panel
}

// newRuntime wires a panel to the file-backed host. sink may be nil.
func newRuntime(cfg *config.Config, sink loader.Sink) (*runtime, error) {
	logger := createLogger(cfg)
	bus := event.NewBus(logger)

	registry := host.NewRegistry(cfg.Registry.ResolvedPath(), logger)
	if err := registry.Reload(); err != nil {
		_ = logger.Close()
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no task registry at %s\nRun 'recents config init' to create one", registry.Path())
		}
		return nil, err
	}

	caches := cache.New(cache.Options{
		IconBytes:      cfg.Cache.IconBytes,
		ThumbnailBytes: cfg.Cache.ThumbnailBytes,
		InfoEntries:    cfg.Cache.InfoEntries,
		Bus:            bus,
		Logger:         logger,
	})
	images := host.NewImages(registry, cfg.Panel.ScaleFactor)

	panel, err := recents.New(recents.Config{
		Registry:     registry,
		Resolver:     host.NewResolver(registry, caches),
		Foreground:   host.NewForeground(registry),
		Icons:        images,
		Thumbnails:   images,
		Media:        host.NewMedia(registry),
		Caches:       caches,
		Host:         sink,
		Settings:     cfg.Panel,
		DefaultColor: defaultCardColor,
	}, recents.WithLogger(logger), recents.WithBus(bus))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		bus:      bus,
		registry: registry,
		caches:   caches,
		panel:    panel,
	}, nil
}

// Close stops the panel and flushes the log.
func (r *runtime) Close() {
	r.panel.Close()
	_ = r.logger.Close()
}

// createLogger creates a logger if logging is enabled in config.
// Returns a NopLogger if logging is disabled or if creation fails.
func createLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	rotation := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	}
	logger, err := logging.NewLoggerWithRotation(config.StateDir(), cfg.Logging.Level, rotation)
	if err != nil {
		// Log creation failure shouldn't prevent the command from running
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}
