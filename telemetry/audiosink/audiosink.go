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

// Package audiosink is a supplemental, non-core example collaborator that
// exercises the one permitted multi-threaded interaction point in the
// simulation core: a background goroutine decoding a reference waveform
// and posting AsyncEvent firings into the simulation thread.
//
// It is grounded on the teacher's real Atari 2600 audio emulation
// dependencies (github.com/go-audio/wav, github.com/go-audio/audio),
// repurposed here from playback into a realistic source of asynchronous
// telemetry: every time the decoded waveform crosses a threshold, a
// Crossing is queued and the bound AsyncEvent is scheduled, draining the
// queue on the simulation thread at its declared phase.
package audiosink

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-audio/wav"

	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/event"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
)

// Crossing records one detected rising threshold crossing in the decoded
// waveform.
type Crossing struct {
	SampleIndex int
	Value       int
}

// Sink bridges a background-goroutine waveform decode to the simulation
// thread. The queue mutex is this package's own resource, not the
// scheduler's async inbox mutex; it exists because AsyncEvent itself
// carries no payload, only a fixed handler.
type Sink struct {
	mu      sync.Mutex
	pending []Crossing

	ev         *event.AsyncEvent
	onCrossing func(Crossing) error
}

// NewSink enrolls the AsyncEvent that will drain detected crossings on the
// simulation thread at phase ph. Must be called before the scheduler is
// finalized.
func NewSink(sched *scheduler.Scheduler, ph phase.Phase, clk *clock.ClockDomain, onCrossing func(Crossing) error) (*Sink, error) {
	s := &Sink{onCrossing: onCrossing}
	ev, err := event.NewAsyncEvent(sched, "audiosink.crossing", ph, clk, false, s.drain)
	if err != nil {
		return nil, err
	}
	s.ev = ev
	return s, nil
}

func (s *Sink) drain() error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, c := range pending {
		if err := s.onCrossing(c); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a PCM wav stream and detects every upward crossing of
// threshold, queuing a Crossing and scheduling the sink's AsyncEvent for
// each. Intended to run on a background goroutine, e.g. `go sink.Decode(...)`;
// it never touches the scheduler directly except through AsyncEvent.Schedule,
// which is safe from any goroutine.
func (s *Sink) Decode(r io.ReadSeeker, threshold int) error {
	d := wav.NewDecoder(r)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("audiosink: decoding wav stream: %w", err)
	}

	above := false
	for i, v := range buf.Data {
		switch {
		case v >= threshold && !above:
			above = true
			s.mu.Lock()
			s.pending = append(s.pending, Crossing{SampleIndex: i, Value: v})
			s.mu.Unlock()
			s.ev.Schedule(0)
		case v < threshold && above:
			above = false
		}
	}
	return nil
}
