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

// Package state implements the observable variable family: EnumState,
// BoolState and MarkerState. All three follow the same monitor/observer
// split: a monitor runs synchronously, inline with set(), and sees every
// transition; an observer is a Scheduleable handle that the state schedules
// (at the observer's own declared phase) once its target value is entered.
//
// Grounded on the teacher's debugger/govern state/substate enum idiom (a
// closed int enum with a String() method and an integrity check pinning
// legal value pairs, generalized here into the EnumValues trait) and on
// debugger/reflection/reflection.go's address-monitor-group pattern, which
// already draws the same distinction between an immediate, synchronous
// watch and a scheduled, later reaction.
package state

import "github.com/jetsetilly/uarchsim/sim/simerrors"

// reentrancyGuard enforces the monitor reentrancy rules shared by EnumState
// and BoolState: a monitor may mutate state on a different key (one level of
// nesting), but the observer lists themselves may never be mutated while a
// monitor is executing.
type reentrancyGuard struct {
	monitorDepth int
}

func (g *reentrancyGuard) enterMonitor() error {
	if g.monitorDepth >= 2 {
		return simerrors.Errorf(simerrors.ReentrantModificationError, "monitor nesting exceeds the permitted one level")
	}
	g.monitorDepth++
	return nil
}

func (g *reentrancyGuard) exitMonitor() {
	g.monitorDepth--
}

func (g *reentrancyGuard) checkMutationAllowed(op string) error {
	if g.monitorDepth > 0 {
		return simerrors.Errorf(simerrors.ReentrantModificationError, "%s may not be called from within a monitor", op)
	}
	return nil
}
