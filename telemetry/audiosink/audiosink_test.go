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

package audiosink_test

import (
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/telemetry/audiosink"
)

func writeTestWav(t *testing.T, samples []int) *os.File {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "audiosink-*.wav")
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           samples,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())

	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	return f
}

func TestSinkDrainsQueuedCrossingsOnFire(t *testing.T) {
	f := writeTestWav(t, []int{0, 0, 100, 100, 0, 100})
	defer f.Close()

	sch := scheduler.New("root")
	var seen []audiosink.Crossing
	s, err := audiosink.NewSink(sch, phase.Tick, nil, func(c audiosink.Crossing) error {
		seen = append(seen, c)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, sch.Finalize())

	require.NoError(t, s.Decode(f, 50))
	require.NoError(t, sch.Run(1, false))

	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[0].SampleIndex)
	assert.Equal(t, 5, seen[1].SampleIndex)
}

func TestSinkIgnoresSamplesBelowThreshold(t *testing.T) {
	f := writeTestWav(t, []int{0, 10, 20, 10, 0})
	defer f.Close()

	sch := scheduler.New("root")
	var seen []audiosink.Crossing
	s, err := audiosink.NewSink(sch, phase.Tick, nil, func(c audiosink.Crossing) error {
		seen = append(seen, c)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, sch.Finalize())

	require.NoError(t, s.Decode(f, 50))
	require.NoError(t, sch.Run(1, false))

	assert.Empty(t, seen)
}
