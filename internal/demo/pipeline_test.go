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

package demo_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/uarchsim/config"
	"github.com/jetsetilly/uarchsim/internal/demo"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
)

func TestPipelineAdvancesOneStagePerTick(t *testing.T) {
	sched := scheduler.New("root")
	cfg, err := config.New()
	require.NoError(t, err)

	p, err := demo.New(sched, cfg)
	require.NoError(t, err)
	require.NoError(t, sched.Finalize())

	require.NoError(t, sched.Run(1, false))
	assert.Equal(t, demo.StageDecode, p.Stage.Value())

	require.NoError(t, sched.Run(1, false))
	assert.Equal(t, demo.StageExecute, p.Stage.Value())

	require.NoError(t, sched.Run(1, false))
	assert.Equal(t, demo.StageFetch, p.Stage.Value())
	assert.Equal(t, uint64(1), p.Retired())
}

func TestPipelineRetiresOneInstructionEveryThreeTicks(t *testing.T) {
	sched := scheduler.New("root")
	cfg, err := config.New()
	require.NoError(t, err)

	p, err := demo.New(sched, cfg)
	require.NoError(t, err)

	var retirements []demo.Retired
	_, err = p.Retire.RegisterForNotification(func(r demo.Retired) error {
		retirements = append(retirements, r)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, sched.Finalize())
	require.NoError(t, sched.Run(9, false))

	require.Len(t, retirements, 3)
	assert.Equal(t, uint64(3), p.Retired())
}

func TestPipelineResidencyReportsStageOccupancy(t *testing.T) {
	sched := scheduler.New("root")
	cfg, err := config.New(config.WithResidency(true))
	require.NoError(t, err)

	p, err := demo.New(sched, cfg)
	require.NoError(t, err)
	require.NoError(t, sched.Finalize())

	require.NoError(t, sched.Run(6, false))
	p.Flush()

	require.NotNil(t, p.Residency)

	// six ticks cover two full fetch/decode/execute rounds, two ticks a stage
	var report strings.Builder
	require.NoError(t, p.Residency.Flush(&report))
	assert.Contains(t, report.String(), "FETCH : 2")
	assert.Contains(t, report.String(), "DECODE : 2")
	assert.Contains(t, report.String(), "EXECUTE : 2")
}
