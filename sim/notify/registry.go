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

package notify

import "github.com/jetsetilly/uarchsim/sim/simerrors"

// Registry is the tree-scoped name/type lookup table concrete
// NotificationSources are published under, and that Mirror sources resolve
// against at bind time. Registry itself is untyped (Go generics cannot name
// a "source of any T" type uniformly); Register and Lookup recover the type
// with a checked assertion.
type Registry struct {
	sources map[string]interface{}
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]interface{})}
}

// Register publishes src under name. Registering the same name twice is a
// configuration error.
func Register[T any](r *Registry, name string, src *NotificationSource[T]) error {
	if _, exists := r.sources[name]; exists {
		return simerrors.Errorf(simerrors.ConfigurationError, "a notification source named %q is already registered", name)
	}
	r.sources[name] = src
	return nil
}

// Lookup resolves name against the registry, asserting it is a
// NotificationSource[T]. ok is false if no source is registered under that
// name, or if it is registered with a different payload type.
func Lookup[T any](r *Registry, name string) (src *NotificationSource[T], ok bool) {
	v, exists := r.sources[name]
	if !exists {
		return nil, false
	}
	src, ok = v.(*NotificationSource[T])
	return src, ok
}
