package task

import (
	"fmt"
	"strings"
)

// Expand state bits, kept for logging and for hosts that store the legacy
// integer form.
const (
	BitExpanded  = 1
	BitCollapsed = 2
	BitBySystem  = 4
	BitTopTask   = 8
)

// UserIntent is the durable, user-chosen expansion of a card.
type UserIntent int

const (
	IntentUnset UserIntent = iota
	IntentExpanded
	IntentCollapsed
)

// String returns the intent name.
func (u UserIntent) String() string {
	switch u {
	case IntentExpanded:
		return "expanded"
	case IntentCollapsed:
		return "collapsed"
	default:
		return "unset"
	}
}

// ExpandState describes how a card is expanded. Top and SystemExpanded are
// computed afresh on every load; only User survives between loads.
type ExpandState struct {
	Top            bool
	SystemExpanded bool
	User           UserIntent
}

// Durable returns the state with the run-scoped annotations cleared.
func (s ExpandState) Durable() ExpandState {
	return ExpandState{User: s.User}
}

// Expanded reports whether the card should be shown expanded. A top task is
// never expanded; a user choice wins over the system default.
func (s ExpandState) Expanded() bool {
	if s.Top {
		return false
	}
	switch s.User {
	case IntentExpanded:
		return true
	case IntentCollapsed:
		return false
	}
	return s.SystemExpanded
}

// WithUser returns a copy of s carrying the given user choice.
func (s ExpandState) WithUser(expanded bool) ExpandState {
	if expanded {
		s.User = IntentExpanded
	} else {
		s.User = IntentCollapsed
	}
	return s
}

// Bits returns the legacy bitmask encoding.
func (s ExpandState) Bits() int {
	var b int
	switch s.User {
	case IntentExpanded:
		b |= BitExpanded
	case IntentCollapsed:
		b |= BitCollapsed
	}
	if s.SystemExpanded {
		b |= BitBySystem
	}
	if s.Top {
		b |= BitTopTask
	}
	return b
}

// FromBits decodes the legacy bitmask. When both user bits are set the
// expanded bit wins.
func FromBits(b int) ExpandState {
	s := ExpandState{
		Top:            b&BitTopTask != 0,
		SystemExpanded: b&BitBySystem != 0,
	}
	switch {
	case b&BitExpanded != 0:
		s.User = IntentExpanded
	case b&BitCollapsed != 0:
		s.User = IntentCollapsed
	}
	return s
}

// String renders the state for logs, e.g. "top|system|user=expanded".
func (s ExpandState) String() string {
	var parts []string
	if s.Top {
		parts = append(parts, "top")
	}
	if s.SystemExpanded {
		parts = append(parts, "system")
	}
	parts = append(parts, "user="+s.User.String())
	return strings.Join(parts, "|")
}

// ExpandMode is the user's expansion preference for the whole panel.
type ExpandMode int

const (
	ModeAuto ExpandMode = iota
	ModeAlways
	ModeNever
	// ModeDisabled turns off expansion and thumbnails entirely.
	ModeDisabled
)

// String returns the config spelling of the mode.
func (m ExpandMode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	case ModeDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("ExpandMode(%d)", int(m))
	}
}

// AllowsSystemExpand reports whether early tasks are expanded by default.
func (m ExpandMode) AllowsSystemExpand() bool {
	return m != ModeNever && m != ModeDisabled
}

// ParseExpandMode parses a config value. Matching is case-insensitive.
func ParseExpandMode(s string) (ExpandMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return ModeAuto, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	case "disabled":
		return ModeDisabled, nil
	}
	return ModeAuto, fmt.Errorf("unknown expand mode %q", s)
}

// ValidExpandModes returns the accepted config spellings.
func ValidExpandModes() []string {
	return []string{"auto", "always", "never", "disabled"}
}
