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

// AsyncEvent is the one Scheduleable whose Schedule method is safe to call
// from a goroutine other than the one running the tick loop: the request is
// buffered and only taken onto the owning thread at the start of the next
// tick (spec §5). Cancel, by contrast, must still be called from the owning
// thread; calling it from elsewhere returns an AsyncMisuseError rather than
// racing the scheduler's internal queues.
type AsyncEvent struct {
	base
	fn func() error
}

// NewAsyncEvent reserves an ID and enrolls a new AsyncEvent.
func NewAsyncEvent(sch *scheduler.Scheduler, label string, ph phase.Phase, clk *clock.ClockDomain, continuing bool, fn func() error) (*AsyncEvent, error) {
	b, err := newBase(sch, label, ph, clk, continuing, false)
	if err != nil {
		return nil, err
	}
	e := &AsyncEvent{base: b, fn: fn}
	if err := sch.Enroll(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Fire invokes the event's handler.
func (e *AsyncEvent) Fire() error { return e.fn() }

// Schedule queues e to fire after delay ticks have elapsed from whichever
// tick is current when the scheduler next drains its async queue. Safe to
// call from any goroutine.
func (e *AsyncEvent) Schedule(delay uint64) {
	e.sched.ScheduleAsync(e, e.cyclesToTicks(delay))
}

// Cancel removes e's pending firing, if any. It must be called from the
// scheduler's owning thread; see AssertOwningThread.
func (e *AsyncEvent) Cancel() error {
	if err := e.sched.AssertOwningThread(); err != nil {
		return err
	}
	e.sched.Cancel(e)
	return nil
}
