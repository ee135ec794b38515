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

package state

import (
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// EnumValues is implemented by an enum-backed type so EnumState can validate
// Set/Reset against its declared range without a runtime scan: the
// generalized replacement for the teacher's require-a-sentinel-enum trick,
// here expressed as a trait rather than a compile-time enum convention.
type EnumValues interface {
	~int
	FirstValue() int
	LastValue() int
}

// Monitor is invoked synchronously, inline with Set/Reset, with the old and
// new value. Monitors see every transition, including ones they themselves
// cause.
type Monitor[E any] func(old, new E)

// MonitorHandle identifies an attached Monitor for later detachment.
type MonitorHandle[E any] struct {
	fn Monitor[E]
}

// EnumState tracks a single current value of an enum type E, and schedules
// per-value observer events on transition.
type EnumState[E EnumValues] struct {
	name  string
	sched *scheduler.Scheduler

	first, last int
	current     E

	observersByValue map[E][]Observer
	monitors         []*MonitorHandle[E]
	guard            reentrancyGuard

	tracker        ResidencyTracker
	lastTransition uint64
}

// Option configures an EnumState at construction.
type Option[E EnumValues] func(*EnumState[E])

// WithResidencyTracker opts an EnumState into residency accounting.
func WithResidencyTracker[E EnumValues](t ResidencyTracker) Option[E] {
	return func(s *EnumState[E]) { s.tracker = t }
}

// NewEnumState constructs an EnumState starting in value initial.
func NewEnumState[E EnumValues](sched *scheduler.Scheduler, name string, initial E, opts ...Option[E]) *EnumState[E] {
	var zero E
	s := &EnumState[E]{
		name:             name,
		sched:            sched,
		first:            zero.FirstValue(),
		last:             zero.LastValue(),
		current:          initial,
		observersByValue: make(map[E][]Observer),
		lastTransition:   uint64(sched.CurrentTick()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the state's diagnostic name.
func (s *EnumState[E]) Name() string { return s.name }

// Value returns the current value.
func (s *EnumState[E]) Value() E { return s.current }

func (s *EnumState[E]) validate(v E) error {
	iv := int(v)
	if iv < s.first || iv > s.last {
		return simerrors.Errorf(simerrors.BoundsError, "%s: value %d outside declared range [%d, %d]", s.name, iv, s.first, s.last)
	}
	return nil
}

// Set updates the current value, runs every attached monitor, and schedules
// every observer registered against the new value (if the value actually
// changed).
func (s *EnumState[E]) Set(v E) error { return s.transition(v, true) }

// Reset is identical to Set except it never schedules observer events; used
// to restore a value during teardown-before-restart without replaying
// history to observers.
func (s *EnumState[E]) Reset(v E) error { return s.transition(v, false) }

func (s *EnumState[E]) transition(v E, fireObservers bool) error {
	if err := s.validate(v); err != nil {
		return err
	}

	old := s.current
	changed := old != v

	if s.tracker != nil && changed {
		now := uint64(s.sched.CurrentTick())
		s.tracker.Transition(int(old), int(v), now-s.lastTransition)
		s.lastTransition = now
	}
	s.current = v

	if err := s.guard.enterMonitor(); err != nil {
		return err
	}
	for _, m := range s.monitors {
		m.fn(old, v)
	}
	s.guard.exitMonitor()

	if fireObservers && changed {
		for _, obs := range s.observersByValue[v] {
			if err := obs.Schedule(0); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush attributes every tick since the last transition to the current
// value without changing it, so a state that has sat in one value since
// construction still contributes a complete residency slot at teardown.
func (s *EnumState[E]) Flush() {
	if s.tracker == nil {
		return
	}
	now := uint64(s.sched.CurrentTick())
	s.tracker.Transition(int(s.current), int(s.current), now-s.lastTransition)
	s.lastTransition = now
}

// Observe registers obs to be scheduled (delay 0, at its own declared phase)
// every time the state transitions into target.
func (s *EnumState[E]) Observe(target E, obs Observer) error {
	if err := s.guard.checkMutationAllowed("observe"); err != nil {
		return err
	}
	if err := s.validate(target); err != nil {
		return err
	}
	s.observersByValue[target] = append(s.observersByValue[target], obs)
	return nil
}

// Withdraw removes obs from target's observer list.
func (s *EnumState[E]) Withdraw(target E, obs Observer) error {
	if err := s.guard.checkMutationAllowed("withdraw"); err != nil {
		return err
	}
	list := s.observersByValue[target]
	for i, o := range list {
		if o == obs {
			s.observersByValue[target] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

// AttachMonitor splices m into the monitor chain, returning a handle for
// later detachment.
func (s *EnumState[E]) AttachMonitor(m Monitor[E]) (*MonitorHandle[E], error) {
	if err := s.guard.checkMutationAllowed("attachMonitor"); err != nil {
		return nil, err
	}
	h := &MonitorHandle[E]{fn: m}
	s.monitors = append(s.monitors, h)
	return h, nil
}

// DetachMonitor removes a previously attached monitor.
func (s *EnumState[E]) DetachMonitor(h *MonitorHandle[E]) error {
	if err := s.guard.checkMutationAllowed("detachMonitor"); err != nil {
		return err
	}
	for i, m := range s.monitors {
		if m == h {
			s.monitors = append(s.monitors[:i], s.monitors[i+1:]...)
			return nil
		}
	}
	return nil
}
