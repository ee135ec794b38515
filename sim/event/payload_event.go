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

package event

import (
	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/phase"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// PayloadEvent is a Scheduleable template carrying a typed payload per
// firing. Unlike Event, a single PayloadEvent can have many firings pending
// at once, each carrying its own payload value; PreparePayload hands out a
// PayloadHandle for each one, recycled from a free-list once its firing
// completes so that steady-state scheduling does no allocation.
type PayloadEvent[T any] struct {
	base
	fn   func(T) error
	free []*PayloadHandle[T]
}

// NewPayloadEvent reserves an ID and enrolls a new PayloadEvent. fn is
// invoked with the payload supplied to PreparePayload at the time the
// corresponding handle fires.
func NewPayloadEvent[T any](sch *scheduler.Scheduler, label string, ph phase.Phase, clk *clock.ClockDomain, continuing bool, fn func(T) error) (*PayloadEvent[T], error) {
	b, err := newBase(sch, label, ph, clk, continuing, false)
	if err != nil {
		return nil, err
	}
	pe := &PayloadEvent[T]{base: b, fn: fn}
	if err := sch.Enroll(pe); err != nil {
		return nil, err
	}
	return pe, nil
}

// Fire exists only to satisfy scheduler.Scheduleable; a bare PayloadEvent is
// never itself scheduled; its handles are.
func (pe *PayloadEvent[T]) Fire() error { return nil }

// PreparePayload returns a handle carrying payload, reused from the event's
// free-list when one is available. Each handle keeps its own scheduling
// identity so that Cancel on one in-flight handle never disturbs another.
func (pe *PayloadEvent[T]) PreparePayload(payload T) *PayloadHandle[T] {
	if n := len(pe.free); n > 0 {
		h := pe.free[n-1]
		pe.free = pe.free[:n-1]
		h.payload = payload
		h.inFlight = false
		return h
	}
	return &PayloadHandle[T]{event: pe, payload: payload, id: pe.sched.MintHandleID()}
}

// PayloadHandle is a single in-flight (or idle, pooled) firing of a
// PayloadEvent.
type PayloadHandle[T any] struct {
	event    *PayloadEvent[T]
	id       uint64
	payload  T
	inFlight bool
}

// Schedule queues h to fire after delay ticks. A handle already in flight
// cannot be rescheduled; prepare a fresh handle from the event instead.
func (h *PayloadHandle[T]) Schedule(delay uint64) error {
	if h.inFlight {
		return simerrors.Errorf(simerrors.BoundsError, "payload handle for %q is already scheduled", h.event.label)
	}
	h.inFlight = true
	return h.event.sched.ScheduleRelative((*payloadScheduleable[T])(h), h.event.cyclesToTicks(delay))
}

// Cancel withdraws h's pending firing, if any, and returns it to the event's
// free-list immediately.
func (h *PayloadHandle[T]) Cancel() {
	h.event.sched.Cancel((*payloadScheduleable[T])(h))
	h.release()
}

func (h *PayloadHandle[T]) release() {
	h.inFlight = false
	h.event.free = append(h.event.free, h)
}

// payloadScheduleable adapts a single PayloadHandle to scheduler.Scheduleable
// without exposing Fire/ID etc. on the handle's own public API.
type payloadScheduleable[T any] PayloadHandle[T]

func (p *payloadScheduleable[T]) handle() *PayloadHandle[T] { return (*PayloadHandle[T])(p) }

func (p *payloadScheduleable[T]) ID() uint64                { return p.id }
func (p *payloadScheduleable[T]) OrderID() uint64            { return p.event.id }
func (p *payloadScheduleable[T]) Label() string              { return p.event.label }
func (p *payloadScheduleable[T]) Phase() phase.Phase         { return p.event.ph }
func (p *payloadScheduleable[T]) Clock() *clock.ClockDomain  { return p.event.clk }
func (p *payloadScheduleable[T]) Continuing() bool           { return p.event.continuing }
func (p *payloadScheduleable[T]) Unique() bool               { return false }

func (p *payloadScheduleable[T]) Fire() error {
	h := p.handle()
	payload := h.payload
	h.release()
	return h.event.fn(payload)
}
