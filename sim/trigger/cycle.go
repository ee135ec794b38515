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
	"math"
	"strconv"
	"strings"

	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/event"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// CycleTrigger fires its owning Trigger once a named clock domain reaches a
// target cycle count.
type CycleTrigger struct {
	owner *Trigger
	ev    *event.UniqueEvent
}

// NewCycleTrigger schedules a one-shot UniqueEvent at clk.TickOf(targetCycle)
// that calls owner.notify() when it fires. It must be called before the
// scheduler is finalized: the event is enrolled at once and scheduled by a
// startup handler when Finalize runs.
func NewCycleTrigger(sched *scheduler.Scheduler, clk *clock.ClockDomain, targetCycle uint64, owner *Trigger) (*CycleTrigger, error) {
	ct := &CycleTrigger{owner: owner}
	// the delay below is already in root-clock ticks, so the event carries no
	// clock of its own to scale it by
	ev, err := event.NewUniqueEvent(sched, "cycleTrigger", phase.Trigger, nil, false, func() error {
		return owner.notify()
	})
	if err != nil {
		return nil, err
	}
	ct.ev = ev

	target := clk.TickOf(targetCycle)
	current := uint64(sched.CurrentTick())
	var delay uint64
	if target > clock.Tick(current) {
		delay = uint64(target) - current
	}
	if err := sched.ScheduleStartupHandler("cycleTrigger", func() error {
		return ev.Schedule(delay)
	}); err != nil {
		return nil, err
	}
	return ct, nil
}

// TimeTrigger fires its owning Trigger once the root clock reaches the tick
// that floor-divides a target time expressed in picoseconds.
type TimeTrigger struct {
	inner *CycleTrigger
}

// timeUnitExponents maps each accepted time unit to the power of ten that
// converts a value in that unit to picoseconds. Unit is optional in an
// expression and defaults to ns.
var timeUnitExponents = map[string]int{
	"ps": 0,
	"ns": 3,
	"us": 6,
	"ms": 9,
}

// ParseTimeExpression parses a time trigger expression such as "1500 ns" or
// "250 us" into a picosecond target. An omitted unit defaults to
// nanoseconds. A zero target is a ParseError: a time trigger that fires
// immediately is not meaningful.
func ParseTimeExpression(expr string) (uint64, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, simerrors.Errorf(simerrors.ParseError, "invalid time trigger expression %q", expr)
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, simerrors.Errorf(simerrors.ParseError, "invalid time trigger expression %q", expr)
	}

	unit := "ns"
	if len(fields) == 2 {
		unit = fields[1]
	}
	exponent, ok := timeUnitExponents[unit]
	if !ok {
		return 0, simerrors.Errorf(simerrors.ParseError, "unrecognized time unit %q in expression %q", unit, expr)
	}

	target := uint64(value * math.Pow10(exponent))
	if target == 0 {
		return 0, simerrors.Errorf(simerrors.ParseError, "time trigger target must not be zero: %q", expr)
	}
	return target, nil
}

// NewTimeTrigger parses expr into a picosecond target, resolves it to a
// root-clock tick via floor division by picosecondsPerTick, and schedules
// identically to NewCycleTrigger.
func NewTimeTrigger(sched *scheduler.Scheduler, picosecondsPerTick uint64, expr string, owner *Trigger) (*TimeTrigger, error) {
	targetPicoseconds, err := ParseTimeExpression(expr)
	if err != nil {
		return nil, err
	}

	targetTick := targetPicoseconds / picosecondsPerTick
	ct, err := NewCycleTrigger(sched, sched.RootClock(), targetTick, owner)
	if err != nil {
		return nil, err
	}
	return &TimeTrigger{inner: ct}, nil
}
