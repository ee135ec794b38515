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

package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/uarchsim/sim/residency"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/sim/state"
)

func (s opState) String() string {
	switch s {
	case opInit:
		return "INIT"
	case opReady:
		return "READY"
	}
	return "UNKNOWN"
}

func TestEnumStateResidencyAttributesTicksToOldValue(t *testing.T) {
	sch := scheduler.New("root")
	pool := residency.NewPool[opState]("opState", int(opInit), int(opLastSentinel-1))
	tr := pool.Acquire()

	s := state.NewEnumState(sch, "op", opInit, state.WithResidencyTracker[opState](tr))
	require.NoError(t, sch.Finalize())

	require.NoError(t, sch.Run(3, false))
	require.NoError(t, s.Set(opReady))

	hist := pool.Histogram()
	assert.Contains(t, hist, "INIT : 3")
}

func TestEnumStateFlushAttributesResidencySinceConstruction(t *testing.T) {
	sch := scheduler.New("root")
	pool := residency.NewPool[opState]("opState", int(opInit), int(opLastSentinel-1))
	tr := pool.Acquire()

	s := state.NewEnumState(sch, "op", opInit, state.WithResidencyTracker[opState](tr))
	require.NoError(t, sch.Finalize())

	require.NoError(t, sch.Run(5, false))
	s.Flush()

	hist := pool.Histogram()
	assert.Contains(t, hist, "INIT : 5")
}
