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

// Package event implements the Scheduleable variants described in spec §3.4
// and §4.2: Event, UniqueEvent, PayloadEvent, StartupEvent and AsyncEvent.
// Event, UniqueEvent, PayloadEvent and AsyncEvent are thin policy wrappers
// around scheduler.Scheduleable, and this package is the only place that
// constructs one; NewStartupEvent registers a scheduler startup handler
// instead of constructing a Scheduleable.
//
// The design is grounded in the teacher's hardware/tia/future ticker (its
// contract recovered from hardware/tia/future/future_test.go's
// Ticker.Schedule(delay, fn, label) / Event.Force/Drop/JustStarted/
// AboutToEnd/RemainingCycles API) and its real call sites in
// debugger/metavideo.go and debugger/reflection/reflection.go, which show a
// delayed/sustained write-monitor built on exactly this kind of scheduling
// primitive.
package event

import (
	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
)

// base is embedded by every Scheduleable implementation in this package. It
// carries the attributes spec §3.3 assigns to a Scheduleable: handler
// (supplied by the concrete type), declared phase, associated clock,
// continuing flag and label.
type base struct {
	id         uint64
	label      string
	ph         phase.Phase
	clk        *clock.ClockDomain
	continuing bool
	unique     bool
	sched      *scheduler.Scheduler
}

func (b *base) ID() uint64                 { return b.id }
func (b *base) Label() string              { return b.label }
func (b *base) Phase() phase.Phase         { return b.ph }
func (b *base) Clock() *clock.ClockDomain  { return b.clk }
func (b *base) Continuing() bool           { return b.continuing }
func (b *base) Unique() bool               { return b.unique }

// cyclesToTicks converts a delay expressed in this Scheduleable's own clock
// domain cycles into a root-clock tick delay, so that events associated
// with a derived clock can be scheduled in clock-local units.
func (b *base) cyclesToTicks(cycles uint64) uint64 {
	if b.clk == nil {
		return cycles
	}
	return cycles * b.clk.Period()
}

func newBase(sch *scheduler.Scheduler, label string, ph phase.Phase, clk *clock.ClockDomain, continuing bool, unique bool) (base, error) {
	id, err := sch.Reserve()
	if err != nil {
		return base{}, err
	}
	return base{
		id:         id,
		label:      label,
		ph:         ph,
		clk:        clk,
		continuing: continuing,
		unique:     unique,
		sched:      sch,
	}, nil
}
