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

// Package simerrors names the error kinds the simulation core can raise, and
// re-exports the curated error helpers (see the top level errors package)
// that every core package uses to construct and test them.
//
// A "kind" is a message template, not a Go type. Callers test for a kind
// with Is(err, SomeKind) rather than a type assertion, which lets a single
// curated error carry a causal chain ("configuration error: precedence
// cycle: ...") while still answering "is this a precedence cycle" at any
// point in the chain via Has.
package simerrors

import (
	"fmt"

	"github.com/jetsetilly/uarchsim/errors"
)

// Values is re-exported so callers constructing curated errors don't need to
// import the errors package directly just for this one type.
type Values = errors.Values

// Errorf constructs a curated error from one of the kind templates below.
// Where the first value is a format string followed by its arguments, they
// are formatted into the kind's single detail.
func Errorf(kind string, values ...interface{}) error {
	if len(values) > 1 {
		if format, ok := values[0].(string); ok {
			return errors.Errorf(kind, fmt.Sprintf(format, values[1:]...))
		}
	}
	return errors.Errorf(kind, values...)
}

// Is, Has and IsAny are re-exported for the same reason.
var (
	Is    = errors.Is
	Has   = errors.Has
	IsAny = errors.IsAny
)

// Error kind templates. Each corresponds to one row of spec §7.
const (
	// ConfigurationError fires when an operation that requires a particular
	// scheduler lifecycle state (pre- or post-finalize) is attempted in the
	// wrong one: a StartupEvent created after finalize, a precedence edge
	// added after finalize, a scheduling call made before finalize.
	ConfigurationError = "configuration error: %v"

	// PrecedenceCycleError fires when Finalize discovers that the declared
	// precedence edges do not admit a topological order.
	PrecedenceCycleError = "precedence cycle error: %v"

	// ReentrantModificationError fires when an observer list is mutated from
	// within a monitor callback or an observation-state callback, or when a
	// monitor nests more than one level deep.
	ReentrantModificationError = "reentrant modification error: %v"

	// UnknownNameError fires when a trigger expression references a tag,
	// notification, counter or statistic that cannot be resolved.
	UnknownNameError = "unknown name error: %v"

	// ParseError fires when a trigger expression string is malformed.
	ParseError = "parse error: %v"

	// BoundsError fires when a value is asked to leave its declared range:
	// an enum state set out of range, a PayloadEvent handle re-scheduled
	// while already in flight, a BoundedValue violation.
	BoundsError = "bounds error: %v"

	// AsyncMisuseError fires when an AsyncEvent is cancelled from a thread
	// other than the one that owns the scheduler.
	AsyncMisuseError = "async misuse error: %v"
)
