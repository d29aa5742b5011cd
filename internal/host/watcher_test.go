package host

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Iron-Ham/recents/internal/event"
	"github.com/Iron-Ham/recents/internal/testutil"
)

// watchChanges subscribes to registry changes and returns the published paths.
func watchChanges(bus *event.Bus) <-chan string {
	published := make(chan string, 4)
	bus.Subscribe(event.TypeRegistryChanged, func(e event.Event) {
		published <- e.(event.RegistryChangedEvent).Path
	})
	return published
}

func TestWatcher_PublishesChange(t *testing.T) {
	path := writeSample(t)
	bus := event.NewBus(nil)
	published := watchChanges(bus)

	w, err := NewWatcher(path, 20*time.Millisecond, bus, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()
	w.Start()

	f := Sample()
	f.Tasks = f.Tasks[:2]
	if err := WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got := testutil.Receive(t, published, testutil.DefaultTimeout, "RegistryChangedEvent")
	if want, _ := filepath.Abs(path); got != want {
		t.Errorf("event path = %q, want %q", got, want)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := writeSample(t)
	bus := event.NewBus(nil)
	published := watchChanges(bus)

	w, err := NewWatcher(path, 20*time.Millisecond, bus, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()
	w.Start()

	testutil.WriteFile(t, filepath.Join(filepath.Dir(path), "notes.txt"), "x")
	testutil.NoReceive(t, published, 200*time.Millisecond, "change of another file")
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(writeSample(t), 0, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.Start()
	w.Stop()
	w.Stop()
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "tasks.yaml"), 0, nil, nil); err == nil {
		t.Error("NewWatcher() on a missing directory should fail")
	}
}
