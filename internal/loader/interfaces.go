package loader

import (
	"context"

	"github.com/Iron-Ham/recents/internal/task"
)

// Sink receives the cards of a load. All calls come from a single delivery
// goroutine, one at a time, so implementations need no locking of their own
// for state only touched from these callbacks.
//
// For every run, CardReady calls arrive in panel order and LoadFinished is
// called exactly once after the last of them. CardUpdated for a card always
// follows its CardReady but may arrive after LoadFinished.
type Sink interface {
	FirstCardAvailable()
	CardReady(card task.Card)
	CardUpdated(identifier string, field task.Field, value any)
	LoadFinished(completed bool)
}

// Starter is implemented by sinks that want to know when a run begins.
// LoadStarted precedes every other call of the run.
type Starter interface {
	LoadStarted()
}

// TaskSource lists the host's recent tasks, most recent first.
type TaskSource interface {
	RecentTasks(ctx context.Context) ([]task.Record, error)
}

// IconResolver produces the icon of a resolved task.
type IconResolver interface {
	Icon(ctx context.Context, desc task.Descriptor) (task.Image, error)
}

// ThumbnailResolver produces the last screenshot of a task.
type ThumbnailResolver interface {
	Thumbnail(ctx context.Context, desc task.Descriptor) (task.Image, error)
}

// MediaProvider reports the track currently playing, if any.
type MediaProvider interface {
	NowPlaying(ctx context.Context) (task.Media, bool)
}
