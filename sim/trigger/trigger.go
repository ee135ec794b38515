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

import "github.com/jetsetilly/uarchsim/sim/simerrors"

// Policy is the composition rule a Trigger applies to its leaves (or, for an
// internal node built from a parenthesized sub-expression, to its children).
type Policy int

const (
	// All requires every leaf to notify before the trigger fires.
	All Policy = iota
	// Any fires on the first leaf to notify.
	Any
)

// Callback is invoked exactly once when a Trigger fires, unless Reschedule
// is called from within it.
type Callback func() error

// Trigger is one node of a (possibly nested) boolean expression over
// leaves. A leaf is itself represented as a Trigger with at most one
// rearmer and Policy All; composing "&&"/"||" builds a Trigger whose
// children are themselves Triggers, linked as dependents, so firing
// propagates up the tree exactly as it would across genuinely independent,
// tag-referenced Triggers.
type Trigger struct {
	tag      string
	policy   Policy
	waiting  int
	leaves   int
	fired    bool
	callback Callback

	rearmers   []func() error
	dependents []*Trigger

	inCallback bool

	deactivated  bool
	deactivators []func()
	// children holds sub-Triggers this node owns (the operands of a
	// composed "&&"/"||"), as opposed to dependents, which it merely
	// notifies. Deactivate cascades into children but not dependents.
	children     []*Trigger
	registeredIn *Manager
}

func newTrigger(policy Policy, leafCount int, cb Callback) *Trigger {
	return &Trigger{policy: policy, waiting: leafCount, leaves: leafCount, callback: cb}
}

// Tag returns the trigger's registered tag, or "" if it was never
// registered with a Manager.
func (t *Trigger) Tag() string { return t.tag }

// Fired reports whether the trigger has fired since construction or the
// last Reschedule.
func (t *Trigger) Fired() bool { return t.fired }

func (t *Trigger) addRearmer(r func() error) { t.rearmers = append(t.rearmers, r) }

// addDependent registers d to be notified (in registration order, alongside
// any other dependents) when t fires.
func (t *Trigger) addDependent(d *Trigger) { t.dependents = append(t.dependents, d) }

func (t *Trigger) removeDependent(d *Trigger) {
	for i, dep := range t.dependents {
		if dep == d {
			t.dependents = append(t.dependents[:i], t.dependents[i+1:]...)
			return
		}
	}
}

func (t *Trigger) addDeactivator(fn func()) { t.deactivators = append(t.deactivators, fn) }

// Deactivate detaches t from every leaf watcher it installed and from any
// tag it referenced, and cascades into the composed sub-Triggers it owns,
// without deallocating t itself: a dependent Trigger that still holds a
// reference to t is left with a node that will simply never fire again,
// rather than a dangling pointer. A Manager slot t is registered under is
// kept until Unregister is called.
func (t *Trigger) Deactivate() {
	if t.deactivated {
		return
	}
	t.deactivated = true
	for _, fn := range t.deactivators {
		fn()
	}
	for _, c := range t.children {
		c.Deactivate()
	}
}

// notify is called by a leaf's backing watcher (or by a child Trigger that
// has just fired) when that leaf/child is satisfied.
func (t *Trigger) notify() error {
	if t.fired {
		return nil
	}
	switch t.policy {
	case Any:
		return t.fire()
	case All:
		t.waiting--
		if t.waiting <= 0 {
			return t.fire()
		}
	}
	return nil
}

func (t *Trigger) fire() error {
	t.fired = true
	if t.callback != nil {
		t.inCallback = true
		err := t.callback()
		t.inCallback = false
		if err != nil {
			return err
		}
	}
	for _, d := range t.dependents {
		if err := d.notify(); err != nil {
			return err
		}
	}
	return nil
}

// Reschedule rearms every leaf beneath this trigger and resets its waiting
// count, so that the expression can fire again. Legal only from within the
// trigger's own callback.
func (t *Trigger) Reschedule() error {
	if !t.inCallback {
		return simerrors.Errorf(simerrors.ConfigurationError, "reschedule is only legal from within a trigger's own callback")
	}
	return t.rearm()
}

func (t *Trigger) rearm() error {
	t.fired = false
	t.waiting = t.leaves
	for _, r := range t.rearmers {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}
