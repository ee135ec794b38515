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
	"github.com/jetsetilly/uarchsim/sim/event"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// StatisticDef is a named, lazily-evaluated statistic a stat_def leaf polls
// periodically, comparing its current value against a target.
type StatisticDef struct {
	path string
	fn   func() int64
}

// NewStatisticDef wraps fn, a statistic-computing closure, under path (for
// example "pipeline.decode.stallRate").
func NewStatisticDef(path string, fn func() int64) *StatisticDef {
	return &StatisticDef{path: path, fn: fn}
}

// StatRegistry resolves a dotted path to a StatisticDef for stat_def
// leaves.
type StatRegistry struct {
	defs map[string]*StatisticDef
}

// NewStatRegistry constructs an empty StatRegistry.
func NewStatRegistry() *StatRegistry {
	return &StatRegistry{defs: make(map[string]*StatisticDef)}
}

// Register publishes def under its own path.
func (r *StatRegistry) Register(def *StatisticDef) error {
	if _, exists := r.defs[def.path]; exists {
		return simerrors.Errorf(simerrors.ConfigurationError, "a statistic is already registered under path %q", def.path)
	}
	r.defs[def.path] = def
	return nil
}

func (r *StatRegistry) lookup(path string) (*StatisticDef, bool) {
	d, ok := r.defs[path]
	return d, ok
}

// buildStatDefLeaf installs a periodic poll, at pollInterval ticks, that
// compares the statistic's current value against target using cmp. The poll
// is itself a UniqueEvent so repeated reschedules within the same tick
// collapse, as with any other scheduled observer. It must be called before
// the scheduler is finalized; the first poll is scheduled by a startup
// handler.
func buildStatDefLeaf(path, op string, target int64, pollInterval uint64, registry *StatRegistry, sched *scheduler.Scheduler) (*Trigger, error) {
	def, ok := registry.lookup(path)
	if !ok {
		return nil, simerrors.Errorf(simerrors.UnknownNameError, "no statistic registered under path %q", path)
	}
	cmp, err := parseComparator(op, target)
	if err != nil {
		return nil, err
	}

	leaf := newTrigger(All, 1, nil)
	satisfied := false

	var poll *event.UniqueEvent
	poll, err = event.NewUniqueEvent(sched, "stat_def."+path, phase.Collection, nil, false, func() error {
		if satisfied {
			return nil
		}
		if cmp(def.fn()) {
			satisfied = true
			return leaf.notify()
		}
		return poll.Schedule(pollInterval)
	})
	if err != nil {
		return nil, err
	}

	leaf.addRearmer(func() error {
		satisfied = false
		return poll.Schedule(pollInterval)
	})
	leaf.addDeactivator(func() { poll.Cancel() })
	if err := sched.ScheduleStartupHandler("stat_def."+path, func() error {
		return poll.Schedule(pollInterval)
	}); err != nil {
		return nil, err
	}
	return leaf, nil
}
