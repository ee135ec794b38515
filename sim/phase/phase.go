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

// Package phase defines the fixed, ordered set of scheduling phases a tick
// is divided into. The ordering is part of the scheduler's contract: every
// handler in an earlier phase of a tick completes before any handler in a
// later phase of that same tick begins.
//
// The enumeration follows the teacher's debugger/govern idiom of a small
// closed int-based enum with a String() method, generalized here to also
// expose First()/Last()/Next() so the scheduler can size per-phase storage
// and iterate phases without a hardcoded switch.
package phase

// Phase is one ordered sub-slot within a tick.
type Phase int

// The fixed phase ordering. Sentinel follows the last real phase and is
// never a legal phase for a Scheduleable to declare.
const (
	Trigger Phase = iota
	Update
	PortUpdate
	Flush
	Collection
	Tick
	PostTick

	sentinel
)

// First is the earliest phase in a tick.
func First() Phase { return Trigger }

// Last is the final real (non-sentinel) phase in a tick.
func Last() Phase { return PostTick }

// Count is the number of real phases.
func Count() int { return int(sentinel) }

// Valid reports whether p is one of the declared, non-sentinel phases.
func (p Phase) Valid() bool {
	return p >= Trigger && p < sentinel
}

// Next returns the phase following p, and false if p is already the last
// phase.
func (p Phase) Next() (Phase, bool) {
	if p+1 >= sentinel {
		return sentinel, false
	}
	return p + 1, true
}

// String implements fmt.Stringer, following the teacher's debugger/govern
// enum-to-string idiom.
func (p Phase) String() string {
	switch p {
	case Trigger:
		return "Trigger"
	case Update:
		return "Update"
	case PortUpdate:
		return "PortUpdate"
	case Flush:
		return "Flush"
	case Collection:
		return "Collection"
	case Tick:
		return "Tick"
	case PostTick:
		return "PostTick"
	}
	return ""
}

// All returns every real phase in order, for callers that want to range
// over the full phase sequence.
func All() []Phase {
	ps := make([]Phase, 0, Count())
	for p := First(); p.Valid(); {
		ps = append(ps, p)
		next, ok := p.Next()
		if !ok {
			break
		}
		p = next
	}
	return ps
}
