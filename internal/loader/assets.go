package loader

import (
	"fmt"
	"sync"

	"github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/task"
)

type assetKind int

const (
	assetIcon assetKind = iota
	assetThumbnail
)

func (k assetKind) stage() errors.Stage {
	if k == assetThumbnail {
		return errors.StageThumbnail
	}
	return errors.StageIcon
}

func (k assetKind) field() task.Field {
	if k == assetThumbnail {
		return task.FieldThumbnail
	}
	return task.FieldIcon
}

type assetJob struct {
	kind  assetKind
	desc  task.Descriptor
	runID string
	// next runs on the same worker once this job is done. A thumbnail
	// follows its icon so that PutThumbnail finds the icon cached.
	next *assetJob
}

// assetQueue is an unbounded hand-off between the card loop and the asset
// pool, so pushing never waits for a resolver.
type assetQueue struct {
	mu     sync.Mutex
	jobs   []assetJob
	closed bool
	wake   chan struct{}
}

func newAssetQueue() *assetQueue {
	return &assetQueue{wake: make(chan struct{}, 1)}
}

func (q *assetQueue) push(j assetJob) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.jobs = append(q.jobs, j)
	q.mu.Unlock()
	q.signal()
	return true
}

func (q *assetQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// take blocks until jobs are queued. It returns false once the queue is
// closed and drained.
func (q *assetQueue) take() ([]assetJob, bool) {
	for {
		q.mu.Lock()
		if len(q.jobs) > 0 {
			jobs := q.jobs
			q.jobs = nil
			q.mu.Unlock()
			return jobs, true
		}
		if q.closed {
			q.mu.Unlock()
			return nil, false
		}
		q.mu.Unlock()
		<-q.wake
	}
}

func (q *assetQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// feed moves queued jobs into the worker pool. Pool.Go blocks while every
// worker is busy; only this goroutine waits on it.
func (l *Loader) feed() {
	defer close(l.fed)
	for {
		jobs, ok := l.queue.take()
		if !ok {
			return
		}
		for _, j := range jobs {
			l.pool.Go(func() { l.resolveAsset(j) })
		}
	}
}

// resolveAsset runs one resolver call, caches the result and posts the card
// update. Failures are logged and leave the card without the image.
func (l *Loader) resolveAsset(j assetJob) {
	if j.next != nil {
		defer l.resolveAsset(*j.next)
	}
	id := j.desc.Identifier
	img, err := l.fetch(j)
	if err != nil {
		lerr := errors.NewLoaderError(j.kind.stage(), err).WithIdentifier(id).WithRun(j.runID)
		l.logger.WithIdentifier(id).LogError("asset unavailable", lerr, "run_id", j.runID)
		return
	}
	if img.Size() == 0 {
		lerr := errors.NewLoaderError(j.kind.stage(), errors.ErrAssetUnavailable).
			WithIdentifier(id).WithRun(j.runID).WithMessage("resolver returned no data")
		l.logger.WithIdentifier(id).LogError("asset unavailable", lerr, "run_id", j.runID)
		return
	}

	switch j.kind {
	case assetIcon:
		l.cfg.Caches.PutIcon(id, img)
	case assetThumbnail:
		l.cfg.Caches.PutThumbnail(id, img)
	}
	l.post(delivery{
		kind:       deliverCardUpdated,
		runID:      j.runID,
		identifier: id,
		field:      j.kind.field(),
		value:      &img,
	})
}

func (l *Loader) fetch(j assetJob) (img task.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolver panicked: %v", r)
		}
	}()
	switch j.kind {
	case assetThumbnail:
		return l.cfg.Thumbnails.Thumbnail(l.ctx, j.desc)
	default:
		return l.cfg.Icons.Icon(l.ctx, j.desc)
	}
}
