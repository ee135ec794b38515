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

// Package residency implements the optional state-residency tracker: a
// pooled per-state-instance accumulator that records ticks spent in each
// value of an enum-backed state, and a plain-text aggregate-and-average
// histogram writer for teardown reporting.
//
// This is grounded on two teacher idioms: the per-address "how long has
// this been true" bookkeeping in debugger/reflection/reflection.go, and the
// free-list pooling pattern sim/event.PayloadEvent already uses for handle
// recycling, applied here to Tracker units instead of scheduled payloads.
package residency

// Enum is the trait a residency-tracked enum type must implement: integer
// convertibility (for indexing) and a name for each value. This resolves
// spec.md §9's enum-to-string question as a required compile-time trait
// (its first alternative) rather than a best-effort runtime probe, matching
// the teacher's debugger/govern.State, which always implements String().
type Enum interface {
	~int
	String() string
}

// Tracker implements sim/state.ResidencyTracker for one live State instance.
// It is never constructed directly; obtain one from a Pool's Acquire.
type Tracker struct {
	pool    *Pool
	ticks   map[int]uint64
	current int
}

// Transition adds elapsed to oldValue's slot and records newValue as
// current, per spec.md §4.7.
func (t *Tracker) Transition(oldValue, newValue int, elapsed uint64) {
	t.ticks[oldValue] += elapsed
	t.current = newValue
}
