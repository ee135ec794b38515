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
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var residency bool

	cmd := &cobra.Command{
		Use:   "run <ticks>",
		Short: "Run the demo pipeline for a fixed number of ticks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticks, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid tick count %q: %w", args[0], err)
			}

			sched, p, err := buildDemo(residency)
			if err != nil {
				return err
			}
			if err := sched.Run(ticks, false); err != nil {
				return err
			}
			p.Flush()

			fmt.Println(p.Describe())
			if p.Residency != nil {
				if err := p.Residency.Flush(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&residency, "residency", false, "track per-stage residency and print a histogram on exit")
	return cmd
}
