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

// Package notify implements the hierarchical typed publish/subscribe
// channel: NotificationSource, its observation-state callback, and the
// Mirror source that exposes a private notification under a public name.
//
// Grounded on the teacher's debugger/metavideo.go and
// debugger/reflection/reflection.go, both of which are hand-written,
// single-purpose notification sinks (a renderer dispatch list invoked
// synchronously on every matching write); this package generalizes that
// shape into a typed, named, registry-discoverable channel.
package notify

import (
	"regexp"
	"strings"

	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

var nameExpr = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// reservedNames collides with the trigger expression grammar's leaf
// prefixes and tag suffixes (notif.*, stat_def.*, tag.start/stop/internal):
// allowing a notification source to claim one of these names would make
// some trigger expressions ambiguous to parse.
var reservedNames = map[string]bool{
	"notif":    true,
	"stat_def": true,
	"tag":      true,
	"start":    true,
	"stop":     true,
	"internal": true,
}

func validateName(name string) error {
	if !nameExpr.MatchString(name) {
		return simerrors.Errorf(simerrors.ConfigurationError, "notification name %q is not a valid identifier", name)
	}
	if strings.Contains(name, "__") {
		return simerrors.Errorf(simerrors.ConfigurationError, "notification name %q contains adjacent underscores", name)
	}
	if reservedNames[strings.ToLower(name)] {
		return simerrors.Errorf(simerrors.ConfigurationError, "notification name %q collides with a reserved word", name)
	}
	return nil
}
