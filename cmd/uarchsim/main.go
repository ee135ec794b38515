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

// uarchsim is a thin command-line front end over the simulation core: it
// only ever touches the core through its public interfaces (Scheduler,
// Config, the demo device tree), never its internals.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uarchsim",
		Short: "Run and inspect a discrete-event microarchitecture simulation",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newDashboardCmd())
	root.AddCommand(newReplCmd())

	return root
}
