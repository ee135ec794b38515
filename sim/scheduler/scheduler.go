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

// Package scheduler implements the single-threaded cooperative tick loop at
// the heart of the simulation core: it owns the global tick counter,
// maintains the per-tick ordered buckets of pending Scheduleables, resolves
// declared precedence into a deterministic per-phase order, and runs the
// tick loop until quiescence or a tick budget is exhausted.
//
// See sim/event for the Scheduleable implementations (Event, UniqueEvent,
// PayloadEvent, AsyncEvent) that client code actually constructs, and for
// NewStartupEvent, which registers a startup handler; this package never
// constructs a Scheduleable itself.
package scheduler

import (
	"container/heap"
	"sync"

	"github.com/jetsetilly/uarchsim/assert"
	"github.com/jetsetilly/uarchsim/logger"
	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// State is the scheduler's lifecycle state.
type State int

const (
	// Configuring is the initial state: Scheduleables may be created and
	// enrolled, precedence may be declared, StartupEvents may be scheduled.
	Configuring State = iota

	// Finalized means Finalize has succeeded: no new Scheduleables, no
	// precedence edits, but Run may be called (possibly repeatedly).
	Finalized

	// Running is set for the duration of a Run call.
	Running

	// Failed is the terminal state entered when a handler returns an error
	// or Finalize discovers a precedence cycle. A failed scheduler must be
	// discarded.
	Failed
)

func (s State) String() string {
	switch s {
	case Configuring:
		return "Configuring"
	case Finalized:
		return "Finalized"
	case Running:
		return "Running"
	case Failed:
		return "Failed"
	}
	return ""
}

type edge struct{ before, after uint64 }

type startupHandler struct {
	label string
	fn    func() error
}

type asyncEntry struct {
	sc    Scheduleable
	delay uint64
}

// Scheduler is the single owner of the global tick counter and of every
// pending Scheduleable. All of its exported methods other than ScheduleAsync
// are documented as callable only from the thread that calls Run (the
// "owning" or "simulation" thread); see spec §5.
type Scheduler struct {
	root *clock.ClockDomain
	Log  *logger.Logger

	state State
	runErr error

	idCounter uint64
	registry  []Scheduleable
	edges     []edge
	order     map[uint64]uint64 // id -> finalized precedence index

	startup []startupHandler

	currentTick     clock.Tick
	buckets         map[clock.Tick]*tickBuckets
	pending         map[uint64][]*item // id -> every pending item referencing it
	insertSeq       uint64
	continuingCount int

	owningGoroutine uint64
	asyncMu         sync.Mutex
	asyncQueue      []asyncEntry

	stopRequested   bool
	handleIDCounter uint64
}

// handleIDBase tags identities minted by MintHandleID so they can never
// collide with a Reserve-allocated, enrolled Scheduleable ID.
const handleIDBase = uint64(1) << 63

// MintHandleID allocates an identity for a transient Scheduleable that is
// not itself enrolled in the registry and carries no precedence constraints
// of its own (for example, one firing of a PayloadEvent). Unlike Reserve, it
// is callable at any lifecycle state, including after Finalize, and its
// values never collide with a Reserve-allocated ID.
func (s *Scheduler) MintHandleID() uint64 {
	s.handleIDCounter++
	return handleIDBase | s.handleIDCounter
}

// orderedAs is implemented by Scheduleables whose precedence position is
// borrowed from another, enrolled Scheduleable (a PayloadEvent handle
// borrows its parent PayloadEvent's position) rather than held under their
// own ID in the order map.
type orderedAs interface {
	OrderID() uint64
}

func (s *Scheduler) orderIndex(sc Scheduleable) uint64 {
	if oa, ok := sc.(orderedAs); ok {
		return s.order[oa.OrderID()]
	}
	return s.order[sc.ID()]
}

// New creates a Scheduler with a fresh root clock domain (period 1).
func New(rootClockName string) *Scheduler {
	return &Scheduler{
		root:     clock.NewRootClock(rootClockName),
		Log:      logger.NewLogger(512),
		buckets:  make(map[clock.Tick]*tickBuckets),
		pending:  make(map[uint64][]*item),
		order:    make(map[uint64]uint64),
	}
}

// RootClock returns the scheduler's mandatory root clock domain.
func (s *Scheduler) RootClock() *clock.ClockDomain { return s.root }

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() State { return s.state }

// CurrentTick returns the tick the scheduler is currently processing (or
// about to process, before the first call to Run).
func (s *Scheduler) CurrentTick() clock.Tick { return s.currentTick }

// Reserve allocates a fresh, never-reused Scheduleable ID. It is legal only
// while the scheduler is Configuring: spec's invariant that no new
// Scheduleable may be created once finalized.
func (s *Scheduler) Reserve() (uint64, error) {
	if s.state != Configuring {
		return 0, simerrors.Errorf(simerrors.ConfigurationError, "cannot create a new Scheduleable once the scheduler has been finalized")
	}
	s.idCounter++
	return s.idCounter, nil
}

// Enroll records sc in the scheduler's registry. Enrollment order is used
// as the stable tie-break for Scheduleables that have no precedence
// relation to one another.
func (s *Scheduler) Enroll(sc Scheduleable) error {
	if s.state != Configuring {
		return simerrors.Errorf(simerrors.ConfigurationError, "cannot enroll a new Scheduleable once the scheduler has been finalized")
	}
	s.registry = append(s.registry, sc)
	return nil
}

// Precede declares that a must run before b whenever both are pending in
// the same tick. Legal only pre-finalize.
func (s *Scheduler) Precede(a, b Scheduleable) error {
	if s.state != Configuring {
		return simerrors.Errorf(simerrors.ConfigurationError, "cannot add a precedence edge once the scheduler has been finalized")
	}
	s.edges = append(s.edges, edge{before: a.ID(), after: b.ID()})
	return nil
}

// ScheduleStartupHandler enqueues a handler to be fired exactly once,
// immediately after Finalize succeeds, before tick zero. Legal only while
// pre-finalized.
func (s *Scheduler) ScheduleStartupHandler(label string, fn func() error) error {
	if s.state != Configuring {
		return simerrors.Errorf(simerrors.ConfigurationError, "startup handlers may only be scheduled before finalization")
	}
	s.startup = append(s.startup, startupHandler{label: label, fn: fn})
	return nil
}

// Finalize resolves all declared precedence into a per-phase total order,
// transitions the scheduler into the Finalized state, and then fires every
// registered startup handler exactly once.
func (s *Scheduler) Finalize() error {
	if s.state != Configuring {
		return simerrors.Errorf(simerrors.ConfigurationError, "scheduler has already been finalized")
	}

	order, err := resolvePrecedence(s.registry, s.edges)
	if err != nil {
		s.state = Failed
		return err
	}
	s.order = order
	s.state = Finalized
	s.owningGoroutine = assert.GetGoRoutineID()

	for _, h := range s.startup {
		s.Log.Log(logger.Allow, "scheduler", "firing startup handler: "+h.label)
		if err := h.fn(); err != nil {
			s.state = Failed
			s.runErr = err
			return err
		}
	}
	return nil
}

// ScheduleRelative inserts sc into the bucket for (currentTick+delay,
// sc.Phase()). For a Unique Scheduleable, repeated calls within the same
// (tick, phase) before it fires collapse to a single pending entry.
func (s *Scheduler) ScheduleRelative(sc Scheduleable, delay uint64) error {
	if s.state != Finalized && s.state != Running {
		return simerrors.Errorf(simerrors.ConfigurationError, "scheduler must be finalized before scheduling %q", sc.Label())
	}

	target := s.currentTick + clock.Tick(delay)
	ph := sc.Phase()

	if sc.Unique() {
		for _, it := range s.pending[sc.ID()] {
			if it.tick == target && it.sc.Phase() == ph {
				return nil // already pending this (tick, phase): collapse
			}
		}
	}

	tb, ok := s.buckets[target]
	if !ok {
		tb = newTickBuckets()
		s.buckets[target] = tb
	}
	h := tb.heapFor(ph, true)

	s.insertSeq++
	it := &item{sc: sc, order: s.orderIndex(sc), seq: s.insertSeq, tick: target}
	heap.Push(h, it)

	s.pending[sc.ID()] = append(s.pending[sc.ID()], it)
	if sc.Continuing() {
		s.continuingCount++
	}
	return nil
}

// ScheduleAsync is the only scheduling entry point safe to call from a
// thread other than the one running the tick loop. It buffers the request
// into a mutex-protected queue, drained onto the owning thread at the start
// of every tick.
func (s *Scheduler) ScheduleAsync(sc Scheduleable, delay uint64) {
	s.asyncMu.Lock()
	s.asyncQueue = append(s.asyncQueue, asyncEntry{sc: sc, delay: delay})
	s.asyncMu.Unlock()
}

func (s *Scheduler) drainAsync() {
	s.asyncMu.Lock()
	pending := s.asyncQueue
	s.asyncQueue = nil
	s.asyncMu.Unlock()

	for _, e := range pending {
		_ = s.ScheduleRelative(e.sc, e.delay)
	}
}

// Cancel removes every pending entry referring to sc from every future
// bucket. It is O(n) in the number of entries currently pending for sc, not
// in the total number of pending entries in the scheduler.
func (s *Scheduler) Cancel(sc Scheduleable) {
	items := s.pending[sc.ID()]
	if len(items) == 0 {
		return
	}
	delete(s.pending, sc.ID())

	for _, it := range items {
		if it.index < 0 {
			continue // already popped and fired; nothing to remove
		}
		tb, ok := s.buckets[it.tick]
		if !ok {
			continue
		}
		h := tb.heapFor(it.sc.Phase(), false)
		if h == nil {
			continue
		}
		heap.Remove(h, it.index)
		if sc.Continuing() {
			s.continuingCount--
		}
		if tb.empty() {
			delete(s.buckets, it.tick)
		}
	}
}

// AssertOwningThread returns an AsyncMisuseError if called from a goroutine
// other than the one that finalized the scheduler. AsyncEvent.Cancel uses
// this to detect foreign-thread cancellation (spec §5, §7); detection is
// best-effort, matching spec §9's open question about the pre-drain race.
func (s *Scheduler) AssertOwningThread() error {
	if assert.GetGoRoutineID() != s.owningGoroutine {
		return simerrors.Errorf(simerrors.AsyncMisuseError, "AsyncEvent.Cancel must be called from the scheduler's owning thread")
	}
	return nil
}

// Run executes the tick loop until either maxTicks ticks have elapsed, or
// (if exitOnQuiescence) no continuing Scheduleable remains pending at the
// current or any future tick.
func (s *Scheduler) Run(maxTicks uint64, exitOnQuiescence bool) error {
	if s.state != Finalized {
		return simerrors.Errorf(simerrors.ConfigurationError, "scheduler must be finalized before it can run")
	}
	s.state = Running
	startTick := s.currentTick

	for !s.stopRequested {
		s.drainAsync()

		if exitOnQuiescence && s.continuingCount == 0 {
			break
		}

		for _, ph := range phase.All() {
			s.drainPhase(s.currentTick, ph)
			if s.state == Failed {
				return s.runErr
			}
		}

		delete(s.buckets, s.currentTick)
		s.currentTick++

		if uint64(s.currentTick-startTick) == maxTicks {
			break
		}
	}

	if s.state == Running {
		s.state = Finalized
	}
	return s.runErr
}

// Stop requests that the current Run call return once the tick in progress
// completes.
func (s *Scheduler) Stop() { s.stopRequested = true }

func (s *Scheduler) drainPhase(t clock.Tick, ph phase.Phase) {
	tb, ok := s.buckets[t]
	if !ok {
		return
	}
	h := tb.heapFor(ph, false)
	if h == nil {
		return
	}

	for h.Len() > 0 {
		it := heap.Pop(h).(*item)
		it.index = -1
		s.removeFromPending(it)
		if it.sc.Continuing() {
			s.continuingCount--
		}

		if err := it.sc.Fire(); err != nil {
			s.state = Failed
			s.runErr = err
			return
		}
	}
}

func (s *Scheduler) removeFromPending(it *item) {
	items := s.pending[it.sc.ID()]
	for i, other := range items {
		if other == it {
			items = append(items[:i], items[i+1:]...)
			break
		}
	}
	if len(items) == 0 {
		delete(s.pending, it.sc.ID())
	} else {
		s.pending[it.sc.ID()] = items
	}
}

// Snapshot is a point-in-time, read-only view of the scheduler's internal
// queues, for thin, core-interface-only collaborators such as
// gui/schedview. It does not expose Scheduleables themselves, only counts
// and labels.
type Snapshot struct {
	CurrentTick     clock.Tick
	State           State
	ContinuingCount int
	PendingByPhase  map[string]int
}

// Snapshot returns a Snapshot of the scheduler's current tick.
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		CurrentTick:     s.currentTick,
		State:           s.state,
		ContinuingCount: s.continuingCount,
		PendingByPhase:  make(map[string]int),
	}
	tb, ok := s.buckets[s.currentTick]
	if !ok {
		return snap
	}
	for _, ph := range phase.All() {
		h := tb.heapFor(ph, false)
		if h != nil {
			snap.PendingByPhase[ph.String()] = h.Len()
		}
	}
	return snap
}

// Registry returns the Scheduleables enrolled with the scheduler, in
// enrollment order. Used by cmd/uarchsim's memviz graph dump.
func (s *Scheduler) Registry() []Scheduleable {
	out := make([]Scheduleable, len(s.registry))
	copy(out, s.registry)
	return out
}

// Edges returns the declared precedence edges as (before, after) ID pairs.
func (s *Scheduler) Edges() [][2]uint64 {
	out := make([][2]uint64, len(s.edges))
	for i, e := range s.edges {
		out[i] = [2]uint64{e.before, e.after}
	}
	return out
}
