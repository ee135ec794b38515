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

// Observer is anything a State can schedule when a transition into its
// target value occurs. In practice this is *event.Event or
// *event.UniqueEvent; state is matched structurally so this package never
// needs to import sim/event.
type Observer interface {
	Schedule(delay uint64) error
}

// ResidencyTracker receives a notification every time an EnumState
// transitions, in time to attribute the ticks just spent in the old value.
// Implemented by sim/residency; state never imports that package, so the
// residency tracker stays an opt-in collaborator rather than a hard
// dependency.
type ResidencyTracker interface {
	Transition(oldValue, newValue int, elapsed uint64)
}
