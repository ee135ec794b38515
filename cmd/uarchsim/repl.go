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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jetsetilly/uarchsim/sim/trigger"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Type trigger expressions against a live demo pipeline and watch them fire",
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, p, err := buildDemo(false)
			if err != nil {
				return err
			}

			counters := trigger.NewCounterRegistry()
			counters.Register("pipeline.retired", p.RetiredCounter())
			ctx := &trigger.Context{
				Counters:  counters,
				Scheduler: sched,
			}

			term := &rawTerm{}
			if err := term.initialise(); err != nil {
				return err
			}
			term.cbreakMode()
			defer term.restore()

			fmt.Fprintln(cmd.OutOrStdout(), "type a trigger expression (e.g. pipeline.retired >= 3), empty line to run one tick, Ctrl-D to quit")
			for {
				line, ok := readLine(os.Stdin, cmd.OutOrStdout())
				if !ok {
					return nil
				}
				if line == "" {
					if err := sched.Run(1, false); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), p.Describe())
					continue
				}

				if _, err := trigger.Build(line, func() error {
					fmt.Fprintf(cmd.OutOrStdout(), "\nfired: %s\n", line)
					return nil
				}, ctx); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", err)
					continue
				}
			}
		},
	}
}

// readLine echoes keystrokes from r one byte at a time, supporting
// backspace, and returns the accumulated line once Enter is seen. ok is
// false on EOF (Ctrl-D).
func readLine(r *os.File, w io.Writer) (string, bool) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 0 || err != nil {
			return "", false
		}
		switch buf[0] {
		case '\r', '\n':
			w.Write([]byte("\n"))
			return string(line), true
		case 127, '\b':
			if len(line) > 0 {
				line = line[:len(line)-1]
				w.Write([]byte("\b \b"))
			}
		default:
			line = append(line, buf[0])
			w.Write(buf)
		}
	}
}
