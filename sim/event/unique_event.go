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

// UniqueEvent is a Scheduleable that collapses repeated Schedule calls
// targeting the same (tick, phase) into a single pending firing: the common
// "refresh a pending deadline" pattern.
type UniqueEvent struct {
	base
	fn func() error
}

// NewUniqueEvent reserves an ID and enrolls a new UniqueEvent.
func NewUniqueEvent(sch *scheduler.Scheduler, label string, ph phase.Phase, clk *clock.ClockDomain, continuing bool, fn func() error) (*UniqueEvent, error) {
	b, err := newBase(sch, label, ph, clk, continuing, true)
	if err != nil {
		return nil, err
	}
	e := &UniqueEvent{base: b, fn: fn}
	if err := sch.Enroll(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Fire invokes the event's handler.
func (e *UniqueEvent) Fire() error { return e.fn() }

// Schedule queues e to fire after delay ticks. If e is already pending in
// the target (tick, phase), this call is a no-op.
func (e *UniqueEvent) Schedule(delay uint64) error {
	return e.sched.ScheduleRelative(e, e.cyclesToTicks(delay))
}

// Cancel removes e's pending firing, if any.
func (e *UniqueEvent) Cancel() { e.sched.Cancel(e) }
