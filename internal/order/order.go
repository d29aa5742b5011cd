// Package order decides which recent tasks become cards and in what order.
//
// Order is a pure function of its inputs: the raw task list, the session
// state remembered from earlier loads, the panel configuration, and two host
// lookups (component resolution and foreground detection).
package order

import (
	"github.com/Iron-Ham/recents/internal/task"
)

// quickSwitchSize is how many resolved tasks are offered for quick switching.
const quickSwitchSize = 2

// Resolver turns a raw record into a descriptor. An error drops the record.
type Resolver interface {
	Resolve(rec task.Record) (task.Descriptor, error)
}

// Foreground reports whether rec is the task currently in the foreground.
type Foreground interface {
	IsForeground(rec task.Record) bool
}

// Prior gives access to the expand state remembered from earlier loads.
type Prior interface {
	Lookup(identifier string) (task.ExpandState, bool)
}

// Set is a set of identifiers.
type Set map[string]struct{}

// NewSet builds a Set from items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Config is the user-facing ordering configuration.
type Config struct {
	Blacklist Set
	Favorites Set
	// MaxCount caps the visible list. Values <= 0 yield no tasks.
	MaxCount int
	// FirstExpandedCount is how many retained non-top tasks are emitted
	// ahead of the rest and expanded by default.
	FirstExpandedCount int
	Mode               task.ExpandMode
}

// Env holds the host lookups used while ordering.
type Env struct {
	Resolver   Resolver
	Foreground Foreground
}

// Result is the outcome of one ordering pass.
type Result struct {
	// Tasks is the visible list, top task first when confirmed.
	Tasks []task.Descriptor
	// QuickSwitch holds the first resolved tasks in arrival order,
	// regardless of blacklist and MaxCount.
	QuickSwitch []task.Descriptor
	// TopTaskInForeground reports whether raw[0] was confirmed as the
	// foreground task.
	TopTaskInForeground bool
}

// Order builds the visible task list from raw, most recent first.
//
// The confirmed top task comes first and ignores the blacklist. The first
// FirstExpandedCount retained non-top tasks follow in arrival order, then
// favorites as they are met, then the remaining tasks until MaxCount is
// reached.
func Order(raw []task.Record, prior Prior, cfg Config, env Env) Result {
	var res Result
	limit := max(cfg.MaxCount, 0)

	var pending []task.Descriptor
	seen := make(map[string]bool)
	early := 0
	full := func() bool { return len(res.Tasks) >= limit }

	for i, rec := range raw {
		if full() && len(res.QuickSwitch) >= quickSwitchSize {
			break
		}

		desc, ok := resolve(env.Resolver, rec)
		top := i == 0 && ok && isForeground(env.Foreground, rec)
		if i == 0 {
			res.TopTaskInForeground = top
		}
		if !ok {
			continue
		}

		desc.Favorite = cfg.Favorites.Has(desc.Identifier)
		desc.State = task.ExpandState{Top: top}
		if prior != nil {
			if known, found := prior.Lookup(desc.Identifier); found {
				desc.State.User = known.Durable().User
			}
		}

		if len(res.QuickSwitch) < quickSwitchSize {
			res.QuickSwitch = append(res.QuickSwitch, desc)
		}
		if full() || seen[desc.Identifier] {
			continue
		}

		if top {
			seen[desc.Identifier] = true
			res.Tasks = append(res.Tasks, desc)
			continue
		}
		if cfg.Blacklist.Has(desc.Identifier) {
			continue
		}
		seen[desc.Identifier] = true

		switch {
		case early < cfg.FirstExpandedCount:
			early++
			desc.State.SystemExpanded = cfg.Mode.AllowsSystemExpand()
			res.Tasks = append(res.Tasks, desc)
		case desc.Favorite:
			res.Tasks = append(res.Tasks, desc)
		default:
			pending = append(pending, desc)
		}
	}

	for _, desc := range pending {
		if full() {
			break
		}
		res.Tasks = append(res.Tasks, desc)
	}
	return res
}

// resolve calls the resolver and treats errors and panics as unresolvable.
func resolve(r Resolver, rec task.Record) (desc task.Descriptor, ok bool) {
	if r == nil {
		return task.Descriptor{}, false
	}
	defer func() {
		if recover() != nil {
			desc, ok = task.Descriptor{}, false
		}
	}()
	desc, err := r.Resolve(rec)
	if err != nil || desc.Identifier == "" {
		return task.Descriptor{}, false
	}
	return desc, true
}

func isForeground(f Foreground, rec task.Record) (fg bool) {
	if f == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			fg = false
		}
	}()
	return f.IsForeground(rec)
}
