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

// Package demo wires a small fetch/decode/execute pipeline out of the core
// packages, standing in for the concrete CPU model the teacher's
// hardware/cpu package provides: not part of the core itself, but a
// runnable device tree cmd/uarchsim can drive and the gui/schedview viewer
// can observe, so the scheduler, state, notify, trigger and residency
// packages have something real exercising them end to end.
package demo

import (
	"fmt"

	"github.com/jetsetilly/uarchsim/config"
	"github.com/jetsetilly/uarchsim/logger"
	"github.com/jetsetilly/uarchsim/sim/event"
	"github.com/jetsetilly/uarchsim/sim/notify"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/residency"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/sim/state"
	"github.com/jetsetilly/uarchsim/sim/trigger"
)

// Stage is the pipeline's per-instruction progress through the three
// modelled steps.
type Stage int

const (
	StageFetch Stage = iota
	StageDecode
	StageExecute
)

// FirstValue and LastValue satisfy state.EnumValues.
func (Stage) FirstValue() int { return int(StageFetch) }
func (Stage) LastValue() int  { return int(StageExecute) }

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "FETCH"
	case StageDecode:
		return "DECODE"
	case StageExecute:
		return "EXECUTE"
	}
	return "UNKNOWN"
}

// Retired is posted once per instruction that completes the Execute stage.
type Retired struct {
	InstructionCount uint64
}

// Pipeline is a minimal three-stage in-order pipeline: one instruction is
// in flight at a time, advancing one stage per root tick.
type Pipeline struct {
	Scheduler *scheduler.Scheduler
	Stage     *state.EnumState[Stage]
	Retire    *notify.NotificationSource[Retired]

	Residency *residency.Registry
	Log       *logger.Logger

	retired      uint64
	counter      *trigger.Counter
	advanceEvent *event.Event
}

// New builds and enrolls a Pipeline's Scheduleables against sched. Must be
// called before sched.Finalize.
func New(sched *scheduler.Scheduler, cfg *config.Config) (*Pipeline, error) {
	retire, err := notify.New[Retired]("pipeline_retire")
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Scheduler: sched,
		Retire:    retire,
		Log:       logger.NewLogger(cfg.LoggerCapacity),
		counter:   trigger.NewCounter(),
	}

	if cfg.ResidencyEnabled {
		p.Residency = residency.NewRegistry()
		pool := residency.NewPool[Stage]("pipeline.stage", int(StageFetch), int(StageExecute))
		if err := p.Residency.Register(pool); err != nil {
			return nil, err
		}
		tr := pool.Acquire()
		p.Stage = state.NewEnumState(sched, "pipeline.stage", StageFetch, state.WithResidencyTracker[Stage](tr))
	} else {
		p.Stage = state.NewEnumState(sched, "pipeline.stage", StageFetch)
	}

	advance, err := event.NewEvent(sched, "pipeline.advance", phase.Tick, nil, true, p.advance)
	if err != nil {
		return nil, err
	}
	if err := sched.ScheduleStartupHandler("pipeline.start", func() error {
		return advance.Schedule(0)
	}); err != nil {
		return nil, err
	}
	p.advanceEvent = advance

	return p, nil
}

func (p *Pipeline) advance() error {
	switch p.Stage.Value() {
	case StageFetch:
		p.Log.Log(logger.Allow, "pipeline", "fetch complete")
		if err := p.Stage.Set(StageDecode); err != nil {
			return err
		}
	case StageDecode:
		p.Log.Log(logger.Allow, "pipeline", "decode complete")
		if err := p.Stage.Set(StageExecute); err != nil {
			return err
		}
	case StageExecute:
		p.retired++
		p.counter.Add(1)
		if err := p.Retire.PostNotification(Retired{InstructionCount: p.retired}); err != nil {
			return err
		}
		p.Log.Logf(logger.Allow, "pipeline", "instruction %d retired", p.retired)
		if err := p.Stage.Set(StageFetch); err != nil {
			return err
		}
	}
	return p.advanceEvent.Schedule(1)
}

// Retired reports how many instructions have completed the Execute stage.
func (p *Pipeline) Retired() uint64 { return p.retired }

// RetiredCounter exposes the internal retirement count as a trigger.Counter
// so expressions such as "pipeline.retired >= 10" can watch it.
func (p *Pipeline) RetiredCounter() *trigger.Counter { return p.counter }

// Flush attributes any residency accrued in the pipeline's current stage
// since its last transition, so a run that stops mid-stage still reports a
// complete histogram.
func (p *Pipeline) Flush() {
	p.Stage.Flush()
}

// Describe renders the pipeline's current state for a CLI or REPL.
func (p *Pipeline) Describe() string {
	return fmt.Sprintf("tick=%d stage=%s retired=%d", p.Scheduler.CurrentTick(), p.Stage.Value(), p.retired)
}
