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

package scheduler

import (
	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/phase"
)

// Scheduleable is the abstract unit of work the Scheduler dispatches. The
// scheduler only ever sees this interface: Event, UniqueEvent, PayloadEvent
// and AsyncEvent (see package event) are all policy-bearing wrappers that
// implement it. A startup event is not a Scheduleable; it is a startup
// handler (see ScheduleStartupHandler).
type Scheduleable interface {
	// ID is a handle-lifetime-stable identity, assigned once by the
	// Scheduler at construction (Reserve) and never reused.
	ID() uint64

	// Label is a debug name, used in logging and introspection.
	Label() string

	// Phase is the declared scheduling phase this Scheduleable always fires
	// in.
	Phase() phase.Phase

	// Clock is the clock domain this Scheduleable's delays are expressed
	// against. A nil Clock means the root clock.
	Clock() *clock.ClockDomain

	// Continuing reports whether, while this Scheduleable is pending, the
	// scheduler should be considered non-quiescent.
	Continuing() bool

	// Unique reports whether repeated scheduling within the same (tick,
	// phase) should collapse to a single pending firing.
	Unique() bool

	// Fire invokes the underlying handler. Returning a non-nil error aborts
	// the run.
	Fire() error
}
