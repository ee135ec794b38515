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

package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/uarchsim/sim/clock"
)

func TestRootClock(t *testing.T) {
	root := clock.NewRootClock("root")
	assert.Equal(t, uint64(1), root.Period())
	assert.True(t, root.IsRoot())
	assert.Equal(t, uint64(42), root.CycleOf(42))
	assert.Equal(t, clock.Tick(42), root.TickOf(42))
}

func TestDerivedClock(t *testing.T) {
	root := clock.NewRootClock("root")
	half, err := root.Derive("half", 2)
	require.NoError(t, err)

	assert.False(t, half.IsRoot())
	assert.Equal(t, root, half.Parent())
	assert.Equal(t, uint64(0), half.CycleOf(0))
	assert.Equal(t, uint64(0), half.CycleOf(1))
	assert.Equal(t, uint64(1), half.CycleOf(2))
	assert.Equal(t, uint64(1), half.CycleOf(3))
	assert.Equal(t, clock.Tick(4), half.TickOf(2))
}

func TestZeroPeriodRejected(t *testing.T) {
	root := clock.NewRootClock("root")
	_, err := root.Derive("bad", 0)
	require.Error(t, err)
}
