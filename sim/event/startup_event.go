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

import "github.com/jetsetilly/uarchsim/sim/scheduler"

// NewStartupEvent registers fn with the scheduler to fire exactly once,
// immediately after Finalize succeeds and before tick zero. There is no
// handle to schedule or cancel: a StartupEvent's only lifecycle event is its
// one, unconditional firing.
func NewStartupEvent(sch *scheduler.Scheduler, label string, fn func() error) error {
	return sch.ScheduleStartupHandler(label, fn)
}
