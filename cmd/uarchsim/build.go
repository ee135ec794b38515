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

package main

import (
	"github.com/jetsetilly/uarchsim/config"
	"github.com/jetsetilly/uarchsim/internal/demo"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
)

// buildDemo constructs a finalized scheduler with a demo pipeline enrolled,
// ready for Run. residencyEnabled opts the pipeline's stage tracking into
// the residency pool.
func buildDemo(residencyEnabled bool) (*scheduler.Scheduler, *demo.Pipeline, error) {
	cfg, err := config.New(config.WithResidency(residencyEnabled))
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New("root")
	p, err := demo.New(sched, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := sched.Finalize(); err != nil {
		return nil, nil, err
	}
	return sched, p, nil
}
