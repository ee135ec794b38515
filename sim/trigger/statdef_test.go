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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/uarchsim/sim/scheduler"
)

func TestStatDefLeafFiresOncePolledValueCrossesTarget(t *testing.T) {
	sched := scheduler.New("root")

	registry := NewStatRegistry()
	value := int64(0)
	require.NoError(t, registry.Register(NewStatisticDef("pipeline.ipc", func() int64 { return value })))

	fired := 0
	leaf, err := buildStatDefLeaf("pipeline.ipc", ">=", 100, 1, registry, sched)
	require.NoError(t, err)
	leaf.callback = func() error { fired++; return nil }
	require.NoError(t, sched.Finalize())

	require.NoError(t, sched.Run(5, false))
	assert.Equal(t, 0, fired)

	value = 150
	require.NoError(t, sched.Run(10, false))
	assert.Equal(t, 1, fired)
}

func TestStatDefLeafRejectsUnknownPath(t *testing.T) {
	sched := scheduler.New("root")
	require.NoError(t, sched.Finalize())
	_, err := buildStatDefLeaf("missing", ">=", 1, 1, NewStatRegistry(), sched)
	require.Error(t, err)
}

func TestStatRegistryRejectsDuplicatePath(t *testing.T) {
	registry := NewStatRegistry()
	require.NoError(t, registry.Register(NewStatisticDef("a", func() int64 { return 0 })))
	err := registry.Register(NewStatisticDef("a", func() int64 { return 0 }))
	require.Error(t, err)
}
