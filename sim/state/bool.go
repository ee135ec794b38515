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

package state

import "github.com/jetsetilly/uarchsim/sim/simerrors"

const maxBoolFlags = 32

// BoolMonitor is invoked synchronously whenever any flag changes.
type BoolMonitor func(flag int, value bool)

// BoolMonitorHandle identifies an attached BoolMonitor for later detachment.
type BoolMonitorHandle struct {
	fn BoolMonitor
}

// BoolState tracks up to 32 independent boolean flags, each with its own
// true/false observer lists.
type BoolState struct {
	name  string
	flags uint32

	observersTrue  [maxBoolFlags][]Observer
	observersFalse [maxBoolFlags][]Observer

	monitors []*BoolMonitorHandle
	guard    reentrancyGuard
}

// NewBoolState constructs a BoolState with every flag initially false.
func NewBoolState(name string) *BoolState {
	return &BoolState{name: name}
}

// Name returns the state's diagnostic name.
func (s *BoolState) Name() string { return s.name }

func (s *BoolState) validate(flag int) error {
	if flag < 0 || flag >= maxBoolFlags {
		return simerrors.Errorf(simerrors.BoundsError, "%s: flag index %d outside [0, %d)", s.name, flag, maxBoolFlags)
	}
	return nil
}

// Get returns flag's current value.
func (s *BoolState) Get(flag int) bool {
	return s.flags&(1<<uint(flag)) != 0
}

// Set updates flag to value, runs every attached monitor, and — if the flag
// actually changed — schedules every observer registered for the new value.
func (s *BoolState) Set(flag int, value bool) error {
	if err := s.validate(flag); err != nil {
		return err
	}

	old := s.Get(flag)
	if value {
		s.flags |= 1 << uint(flag)
	} else {
		s.flags &^= 1 << uint(flag)
	}

	if err := s.guard.enterMonitor(); err != nil {
		return err
	}
	for _, m := range s.monitors {
		m.fn(flag, value)
	}
	s.guard.exitMonitor()

	if old == value {
		return nil
	}
	list := s.observersFalse[flag]
	if value {
		list = s.observersTrue[flag]
	}
	for _, obs := range list {
		if err := obs.Schedule(0); err != nil {
			return err
		}
	}
	return nil
}

// Observe registers obs to be scheduled when flag transitions to value.
func (s *BoolState) Observe(flag int, value bool, obs Observer) error {
	if err := s.guard.checkMutationAllowed("observe"); err != nil {
		return err
	}
	if err := s.validate(flag); err != nil {
		return err
	}
	if value {
		s.observersTrue[flag] = append(s.observersTrue[flag], obs)
	} else {
		s.observersFalse[flag] = append(s.observersFalse[flag], obs)
	}
	return nil
}

// Withdraw removes obs from flag's value observer list.
func (s *BoolState) Withdraw(flag int, value bool, obs Observer) error {
	if err := s.guard.checkMutationAllowed("withdraw"); err != nil {
		return err
	}
	if err := s.validate(flag); err != nil {
		return err
	}
	list := s.observersFalse[flag]
	if value {
		list = s.observersTrue[flag]
	}
	for i, o := range list {
		if o == obs {
			list = append(list[:i], list[i+1:]...)
			if value {
				s.observersTrue[flag] = list
			} else {
				s.observersFalse[flag] = list
			}
			return nil
		}
	}
	return nil
}

// AttachMonitor splices m into the monitor chain.
func (s *BoolState) AttachMonitor(m BoolMonitor) (*BoolMonitorHandle, error) {
	if err := s.guard.checkMutationAllowed("attachMonitor"); err != nil {
		return nil, err
	}
	h := &BoolMonitorHandle{fn: m}
	s.monitors = append(s.monitors, h)
	return h, nil
}

// DetachMonitor removes a previously attached monitor.
func (s *BoolState) DetachMonitor(h *BoolMonitorHandle) error {
	if err := s.guard.checkMutationAllowed("detachMonitor"); err != nil {
		return err
	}
	for i, m := range s.monitors {
		if m == h {
			s.monitors = append(s.monitors[:i], s.monitors[i+1:]...)
			return nil
		}
	}
	return nil
}
