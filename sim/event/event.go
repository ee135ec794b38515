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

package event

import (
	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
)

// Event is a plain Scheduleable: each call to Schedule queues an independent
// pending firing, with no deduplication.
type Event struct {
	base
	fn func() error
}

// NewEvent reserves an ID and enrolls a new Event with the scheduler. fn is
// invoked, with no argument, every time the event fires.
func NewEvent(sch *scheduler.Scheduler, label string, ph phase.Phase, clk *clock.ClockDomain, continuing bool, fn func() error) (*Event, error) {
	b, err := newBase(sch, label, ph, clk, continuing, false)
	if err != nil {
		return nil, err
	}
	e := &Event{base: b, fn: fn}
	if err := sch.Enroll(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Fire invokes the event's handler.
func (e *Event) Fire() error { return e.fn() }

// Schedule queues e to fire after delay ticks (expressed in e's own clock
// domain, if it has one).
func (e *Event) Schedule(delay uint64) error {
	return e.sched.ScheduleRelative(e, e.cyclesToTicks(delay))
}

// Cancel removes every pending firing of e.
func (e *Event) Cancel() { e.sched.Cancel(e) }
