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

// Mirror is a passive facade: it forwards RegisterForNotification to one or
// more concrete NotificationSources discovered by name against a Registry at
// Bind time, so that a subsystem's private notifications can be exposed
// under a single public name without the publisher and subscriber knowing
// about each other directly.
type Mirror[T any] struct {
	name        string
	sourceNames []string
	bound       []*NotificationSource[T]
}

// NewMirror declares a Mirror named name that will forward to the named
// concrete sources once Bind is called.
func NewMirror[T any](name string, sourceNames ...string) (*Mirror[T], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Mirror[T]{name: name, sourceNames: sourceNames}, nil
}

// Name returns the mirror's own public name.
func (m *Mirror[T]) Name() string { return m.name }

// Bind resolves every declared source name against r. It is an error to
// bind twice, or to reference a name that does not resolve to a
// NotificationSource[T].
func (m *Mirror[T]) Bind(r *Registry) error {
	if m.bound != nil {
		return simerrors.Errorf(simerrors.ConfigurationError, "mirror %q has already been bound", m.name)
	}
	bound := make([]*NotificationSource[T], 0, len(m.sourceNames))
	for _, n := range m.sourceNames {
		src, ok := Lookup[T](r, n)
		if !ok {
			return simerrors.Errorf(simerrors.UnknownNameError, "mirror %q: no notification source named %q", m.name, n)
		}
		bound = append(bound, src)
	}
	m.bound = bound
	return nil
}

// MirrorRegistration aggregates one Registration per bound concrete source
// so the caller can deregister from all of them with a single call.
type MirrorRegistration[T any] struct {
	regs []*Registration[T]
}

func (r *MirrorRegistration[T]) Deregister() error {
	for _, reg := range r.regs {
		if err := reg.Deregister(); err != nil {
			return err
		}
	}
	return nil
}

// RegisterForNotification forwards h to every bound concrete source.
func (m *Mirror[T]) RegisterForNotification(h Handler[T]) (*MirrorRegistration[T], error) {
	agg := &MirrorRegistration[T]{regs: make([]*Registration[T], 0, len(m.bound))}
	for _, src := range m.bound {
		reg, err := src.RegisterForNotification(h)
		if err != nil {
			return nil, err
		}
		agg.regs = append(agg.regs, reg)
	}
	return agg, nil
}
