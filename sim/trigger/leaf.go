// This file is part of uarchsim.
//
// uarchsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// uarchsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with uarchsim.  If not, see <https://www.gnu.org/licenses/>.

package trigger

import (
	"strconv"

	"github.com/jetsetilly/uarchsim/sim/notify"
	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// comparator compares a leaf's live value against its parsed target.
type comparator func(current int64) bool

func parseComparator(op string, target int64) (comparator, error) {
	switch op {
	case "==":
		return func(c int64) bool { return c == target }, nil
	case "!=":
		return func(c int64) bool { return c != target }, nil
	case ">=":
		return func(c int64) bool { return c >= target }, nil
	case "<=":
		return func(c int64) bool { return c <= target }, nil
	case ">":
		return func(c int64) bool { return c > target }, nil
	case "<":
		return func(c int64) bool { return c < target }, nil
	}
	return nil, simerrors.Errorf(simerrors.ParseError, "unknown comparison operator %q", op)
}

// parseValue parses a VALUE token: an integer literal with an optional
// single-letter suffix, k/m/b/t for 10^3/10^6/10^9/10^12.
func parseValue(tok string) (int64, error) {
	mult := int64(1)
	suffix := tok[len(tok)-1:]
	switch suffix {
	case "k":
		mult, tok = 1_000, tok[:len(tok)-1]
	case "m":
		mult, tok = 1_000_000, tok[:len(tok)-1]
	case "b":
		mult, tok = 1_000_000_000, tok[:len(tok)-1]
	case "t":
		mult, tok = 1_000_000_000_000, tok[:len(tok)-1]
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, simerrors.Errorf(simerrors.ParseError, "invalid numeric value %q", tok)
	}
	return n * mult, nil
}

// Counter is a monotonically increasing count a counter_leaf can watch.
// Only >= is a legal comparator against a Counter, since it can never
// decrease.
type Counter struct {
	value    int64
	watchers []func(int64)
}

// NewCounter constructs a zero-valued Counter.
func NewCounter() *Counter { return &Counter{} }

// Add increases the counter and notifies every installed watcher.
func (c *Counter) Add(delta int64) {
	c.value += delta
	for _, w := range c.watchers {
		w(c.value)
	}
}

// Value returns the counter's current value.
func (c *Counter) Value() int64 { return c.value }

func (c *Counter) onChange(w func(int64)) { c.watchers = append(c.watchers, w) }

// CounterRegistry resolves a dotted path to a Counter for counter_leaf.
type CounterRegistry struct {
	counters map[string]*Counter
}

// NewCounterRegistry constructs an empty CounterRegistry.
func NewCounterRegistry() *CounterRegistry {
	return &CounterRegistry{counters: make(map[string]*Counter)}
}

// Register publishes c under path.
func (r *CounterRegistry) Register(path string, c *Counter) {
	r.counters[path] = c
}

func (r *CounterRegistry) lookup(path string) (*Counter, bool) {
	c, ok := r.counters[path]
	return c, ok
}

// buildCounterLeaf installs a threshold watch on the named counter. Only
// ">=" is legal, since counters are monotonic.
func buildCounterLeaf(path, op string, target int64, registry *CounterRegistry) (*Trigger, error) {
	if op != ">=" {
		return nil, simerrors.Errorf(simerrors.ParseError, "counter leaf %q: only >= is a legal comparator against a monotonic counter", path)
	}
	counter, ok := registry.lookup(path)
	if !ok {
		return nil, simerrors.Errorf(simerrors.UnknownNameError, "no counter named %q", path)
	}

	leaf := newTrigger(All, 1, nil)
	satisfied := false
	live := true
	watch := func(current int64) {
		if satisfied || !live {
			return
		}
		if current >= target {
			satisfied = true
			_ = leaf.notify()
		}
	}
	counter.onChange(watch)
	leaf.addRearmer(func() error {
		satisfied = false
		return nil
	})
	leaf.addDeactivator(func() { live = false })
	return leaf, nil
}

// buildNotificationLeaf installs a comparator-checking observer on the named
// int64 NotificationSource.
func buildNotificationLeaf(name, op string, target int64, registry *notify.Registry) (*Trigger, error) {
	src, ok := notify.Lookup[int64](registry, name)
	if !ok {
		return nil, simerrors.Errorf(simerrors.UnknownNameError, "no notification source named %q", name)
	}
	cmp, err := parseComparator(op, target)
	if err != nil {
		return nil, err
	}

	leaf := newTrigger(All, 1, nil)
	satisfied := false
	var reg *notify.Registration[int64]
	handler := func(payload int64) error {
		if satisfied {
			return nil
		}
		if cmp(payload) {
			satisfied = true
			return leaf.notify()
		}
		return nil
	}
	reg, err = src.RegisterForNotification(handler)
	if err != nil {
		return nil, err
	}
	leaf.addRearmer(func() error {
		satisfied = false
		if reg != nil {
			_ = reg.Deregister()
		}
		r, err := src.RegisterForNotification(handler)
		if err != nil {
			return err
		}
		reg = r
		return nil
	})
	leaf.addDeactivator(func() {
		if reg != nil {
			_ = reg.Deregister()
			reg = nil
		}
	})
	return leaf, nil
}

// buildTagLeaf resolves a "tag.start"/"tag.stop"/"tag.internal" reference
// against the process-wide tagged registry, registering this leaf as a
// dependent of the referenced Trigger.
func buildTagLeaf(tag, suffix string, manager *Manager) (*Trigger, error) {
	switch suffix {
	case "start", "stop", "internal":
	default:
		return nil, simerrors.Errorf(simerrors.ParseError, "tag reference suffix must be one of start, stop, internal, got %q", suffix)
	}
	key := tag + "." + suffix
	referenced, ok := manager.lookup(key)
	if !ok {
		return nil, simerrors.Errorf(simerrors.UnknownNameError, "no trigger registered under tag %q", key)
	}

	leaf := newTrigger(All, 1, nil)
	referenced.addDependent(leaf)
	leaf.addDeactivator(func() { referenced.removeDependent(leaf) })
	return leaf, nil
}
