package session

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/Iron-Ham/recents/internal/task"
)

func TestStore_RecordKeepsOnlyDurableState(t *testing.T) {
	s := NewStore()
	s.Record("#ident:a", task.ExpandState{Top: true, SystemExpanded: true, User: task.IntentCollapsed})

	got, ok := s.Lookup("#ident:a")
	if !ok {
		t.Fatal("Lookup() found nothing")
	}
	want := task.ExpandState{User: task.IntentCollapsed}
	if got != want {
		t.Errorf("Lookup() = %v, want %v", got, want)
	}
	if got.Bits() != task.BitCollapsed {
		t.Errorf("Bits() = %d, want only the collapsed bit", got.Bits())
	}
}

func TestStore_LookupUnknown(t *testing.T) {
	s := NewStore()
	if _, ok := s.Lookup("#ident:missing"); ok {
		t.Error("Lookup() of an unknown identifier should report false")
	}
	s.Record("", task.ExpandState{User: task.IntentExpanded})
	if s.Len() != 0 {
		t.Error("empty identifiers must not be recorded")
	}
}

func TestStore_Forget(t *testing.T) {
	s := NewStore()
	s.Record("#ident:a", task.ExpandState{})

	if !s.Forget("#ident:a") {
		t.Error("Forget() of a known identifier should return true")
	}
	if s.Forget("#ident:a") {
		t.Error("second Forget() should return false")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStore_Snapshot(t *testing.T) {
	s := NewStore()
	s.Record("#ident:old", task.ExpandState{User: task.IntentExpanded})

	s.Snapshot([]task.Descriptor{
		{Identifier: "#ident:a", State: task.ExpandState{SystemExpanded: true}},
		{Identifier: "#ident:b", State: task.ExpandState{User: task.IntentExpanded, Top: true}},
		{Identifier: ""},
	})

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if got, _ := s.Lookup("#ident:a"); got != (task.ExpandState{}) {
		t.Errorf("a = %v, want unset intent", got)
	}
	if got, _ := s.Lookup("#ident:b"); got != (task.ExpandState{User: task.IntentExpanded}) {
		t.Errorf("b = %v", got)
	}
	if !reflect.DeepEqual(s.Identifiers(), []string{"#ident:a", "#ident:b", "#ident:old"}) {
		t.Errorf("Identifiers() = %v", s.Identifiers())
	}
}

func TestStore_Retain(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"#ident:a", "#ident:b", "#ident:c"} {
		s.Record(id, task.ExpandState{})
	}

	removed := s.Retain(func(id string) bool { return id == "#ident:b" })
	if removed != 2 {
		t.Errorf("Retain() removed %d, want 2", removed)
	}
	if !reflect.DeepEqual(s.Identifiers(), []string{"#ident:b"}) {
		t.Errorf("Identifiers() = %v", s.Identifiers())
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range 200 {
				id := fmt.Sprintf("#ident:%d", i%20)
				switch (w + i) % 3 {
				case 0:
					s.Record(id, task.ExpandState{User: task.IntentExpanded})
				case 1:
					s.Lookup(id)
				default:
					s.Forget(id)
				}
			}
		}(w)
	}
	wg.Wait()
	if s.Len() > 20 {
		t.Errorf("Len() = %d, want <= 20", s.Len())
	}
}
