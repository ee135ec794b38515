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

package residency

import (
	"io"
	"strings"

	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// Registry is the global teardown collaborator: every distinct Enum type
// opted into residency tracking registers its Pool here once, and a single
// call to Flush writes one histogram block per type.
type Registry struct {
	pools []*Pool
	names map[string]bool
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register publishes pool under its declared enum name. Registering the
// same enum name twice is a configuration error.
func (r *Registry) Register(pool *Pool) error {
	if r.names[pool.enumName] {
		return simerrors.Errorf(simerrors.ConfigurationError, "a residency pool for enum %q is already registered", pool.enumName)
	}
	r.names[pool.enumName] = true
	r.pools = append(r.pools, pool)
	return nil
}

// Flush writes every registered pool's histogram to w, in registration
// order, each block separated by a blank line.
func (r *Registry) Flush(w io.Writer) error {
	blocks := make([]string, 0, len(r.pools))
	for _, p := range r.pools {
		blocks = append(blocks, p.Histogram())
	}
	_, err := io.WriteString(w, strings.Join(blocks, "\n"))
	return err
}
