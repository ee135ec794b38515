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

package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
)

// stub is a minimal scheduler.Scheduleable for exercising the scheduler
// package in isolation from sim/event.
type stub struct {
	id         uint64
	label      string
	ph         phase.Phase
	continuing bool
	unique     bool
	fireCount  int
	fire       func() error
}

func (s *stub) ID() uint64               { return s.id }
func (s *stub) Label() string            { return s.label }
func (s *stub) Phase() phase.Phase       { return s.ph }
func (s *stub) Clock() *clock.ClockDomain { return nil }
func (s *stub) Continuing() bool         { return s.continuing }
func (s *stub) Unique() bool             { return s.unique }
func (s *stub) Fire() error {
	s.fireCount++
	if s.fire != nil {
		return s.fire()
	}
	return nil
}

func TestPrecedenceOrderRespected(t *testing.T) {
	sch := scheduler.New("root")

	var order []string
	mk := func(label string) *stub {
		id, err := sch.Reserve()
		require.NoError(t, err)
		s := &stub{id: id, label: label, ph: phase.Tick}
		s.fire = func() error { order = append(order, label); return nil }
		require.NoError(t, sch.Enroll(s))
		return s
	}

	// enroll in an order that is the *opposite* of the precedence we declare,
	// so that a pass just mirrors enrollment order would fail this test.
	c := mk("c")
	b := mk("b")
	a := mk("a")

	require.NoError(t, sch.Precede(a, b))
	require.NoError(t, sch.Precede(b, c))
	require.NoError(t, sch.Finalize())

	require.NoError(t, sch.ScheduleRelative(c, 0))
	require.NoError(t, sch.ScheduleRelative(b, 0))
	require.NoError(t, sch.ScheduleRelative(a, 0))

	require.NoError(t, sch.Run(1, false))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestPrecedenceCycleRejected(t *testing.T) {
	sch := scheduler.New("root")

	mk := func(label string) *stub {
		id, err := sch.Reserve()
		require.NoError(t, err)
		s := &stub{id: id, label: label, ph: phase.Tick}
		require.NoError(t, sch.Enroll(s))
		return s
	}

	a := mk("a")
	b := mk("b")
	require.NoError(t, sch.Precede(a, b))
	require.NoError(t, sch.Precede(b, a))

	err := sch.Finalize()
	assert.Error(t, err)
	assert.Equal(t, scheduler.Failed, sch.State())
}

func TestQuiescenceStopsRunEarly(t *testing.T) {
	sch := scheduler.New("root")

	id, err := sch.Reserve()
	require.NoError(t, err)
	fired := 0
	s := &stub{id: id, label: "once", ph: phase.Tick, continuing: true}
	s.fire = func() error { fired++; return nil }
	require.NoError(t, sch.Enroll(s))
	require.NoError(t, sch.Finalize())
	require.NoError(t, sch.ScheduleRelative(s, 0))

	require.NoError(t, sch.Run(1000, true))
	assert.Equal(t, 1, fired)
	assert.Less(t, uint64(sch.CurrentTick()), uint64(1000))
}

func TestUniqueEventCollapsesRepeatedSchedule(t *testing.T) {
	sch := scheduler.New("root")

	id, err := sch.Reserve()
	require.NoError(t, err)
	s := &stub{id: id, label: "u", ph: phase.Tick, unique: true}
	require.NoError(t, sch.Enroll(s))
	require.NoError(t, sch.Finalize())

	require.NoError(t, sch.ScheduleRelative(s, 2))
	require.NoError(t, sch.ScheduleRelative(s, 2))
	require.NoError(t, sch.ScheduleRelative(s, 2))

	require.NoError(t, sch.Run(5, false))
	assert.Equal(t, 1, s.fireCount)
}

func TestCancelRemovesPendingFiring(t *testing.T) {
	sch := scheduler.New("root")

	id, err := sch.Reserve()
	require.NoError(t, err)
	s := &stub{id: id, label: "c", ph: phase.Tick}
	require.NoError(t, sch.Enroll(s))
	require.NoError(t, sch.Finalize())

	require.NoError(t, sch.ScheduleRelative(s, 3))
	sch.Cancel(s)

	require.NoError(t, sch.Run(10, false))
	assert.Equal(t, 0, s.fireCount)
}

func TestStartupHandlerFiresBeforeTickZero(t *testing.T) {
	sch := scheduler.New("root")

	var fired bool
	require.NoError(t, sch.ScheduleStartupHandler("init", func() error {
		fired = true
		return nil
	}))
	assert.False(t, fired)
	require.NoError(t, sch.Finalize())
	assert.True(t, fired)
}
