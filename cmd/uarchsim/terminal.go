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
	"os"
	"syscall"

	"github.com/pkg/term/termios"
)

// rawTerm is a minimal posix terminal wrapper, trimmed from the teacher's
// easyterm (no geometry tracking or SIGWINCH handling, which a one-shot
// REPL has no use for): put stdin into cbreak mode so the repl can read and
// echo one character at a time, and restore canonical mode on exit.
type rawTerm struct {
	canAttr    syscall.Termios
	cbreakAttr syscall.Termios
}

func (t *rawTerm) initialise() error {
	if err := termios.Tcgetattr(os.Stdin.Fd(), &t.canAttr); err != nil {
		return err
	}
	t.cbreakAttr = t.canAttr
	termios.Cfmakecbreak(&t.cbreakAttr)
	return nil
}

func (t *rawTerm) cbreakMode() {
	termios.Tcsetattr(os.Stdin.Fd(), termios.TCIFLUSH, &t.cbreakAttr)
}

func (t *rawTerm) restore() {
	termios.Tcsetattr(os.Stdin.Fd(), termios.TCIFLUSH, &t.canAttr)
}
