package task

import "testing"

func TestExpandState_Expanded(t *testing.T) {
	tests := []struct {
		name  string
		state ExpandState
		want  bool
	}{
		{"empty", ExpandState{}, false},
		{"system default", ExpandState{SystemExpanded: true}, true},
		{"user collapsed beats system", ExpandState{SystemExpanded: true, User: IntentCollapsed}, false},
		{"user expanded", ExpandState{User: IntentExpanded}, true},
		{"top never expanded", ExpandState{Top: true, User: IntentExpanded, SystemExpanded: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Expanded(); got != tt.want {
				t.Errorf("Expanded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandState_DurableClearsRunScopedBits(t *testing.T) {
	s := ExpandState{Top: true, SystemExpanded: true, User: IntentCollapsed}
	d := s.Durable()
	if d.Top || d.SystemExpanded {
		t.Errorf("Durable() = %v, want run-scoped bits cleared", d)
	}
	if d.User != IntentCollapsed {
		t.Errorf("Durable().User = %v, want collapsed", d.User)
	}
}

func TestExpandState_Bits(t *testing.T) {
	for bits := 0; bits < 16; bits++ {
		if bits&BitExpanded != 0 && bits&BitCollapsed != 0 {
			continue
		}
		if got := FromBits(bits).Bits(); got != bits {
			t.Errorf("FromBits(%d).Bits() = %d", bits, got)
		}
	}
	if got := FromBits(BitExpanded | BitCollapsed).User; got != IntentExpanded {
		t.Errorf("conflicting bits decoded to %v, want expanded", got)
	}
}

func TestParseExpandMode(t *testing.T) {
	for _, name := range ValidExpandModes() {
		m, err := ParseExpandMode(name)
		if err != nil {
			t.Fatalf("ParseExpandMode(%q): %v", name, err)
		}
		if m.String() != name {
			t.Errorf("round trip %q -> %q", name, m.String())
		}
	}
	if _, err := ParseExpandMode("sideways"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if m, _ := ParseExpandMode("DISABLED"); m != ModeDisabled {
		t.Errorf("case-insensitive parse = %v", m)
	}
}

func TestExpandMode_AllowsSystemExpand(t *testing.T) {
	want := map[ExpandMode]bool{ModeAuto: true, ModeAlways: true, ModeNever: false, ModeDisabled: false}
	for m, w := range want {
		if got := m.AllowsSystemExpand(); got != w {
			t.Errorf("%v.AllowsSystemExpand() = %v, want %v", m, got, w)
		}
	}
}
