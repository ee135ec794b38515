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

package trigger

import "github.com/jetsetilly/uarchsim/sim/simerrors"

// Manager is the process-wide tagged registry mapping "tag.event" to a
// Trigger. It holds borrowed references only: a Trigger is expected to
// Unregister itself when its owner drops it, rather than the Manager owning
// its lifetime.
type Manager struct {
	byKey map[string]*Trigger
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{byKey: make(map[string]*Trigger)}
}

// Register publishes t under tag.event (for example "decode.start"). It is
// a configuration error to register the same key twice while the first
// registration is still active.
func (m *Manager) Register(tag, event string, t *Trigger) error {
	key := tag + "." + event
	if _, exists := m.byKey[key]; exists {
		return simerrors.Errorf(simerrors.ConfigurationError, "a trigger is already registered under tag %q", key)
	}
	t.tag = key
	t.registeredIn = m
	m.byKey[key] = t
	return nil
}

// Unregister removes t's slot. Deactivated (expiring) triggers call this
// once their owning wrapper drops them; until then their slot is retained,
// so a dependent trigger's reference never dangles.
func (m *Manager) Unregister(t *Trigger) {
	if t.tag == "" {
		return
	}
	delete(m.byKey, t.tag)
	t.tag = ""
	t.registeredIn = nil
}

func (m *Manager) lookup(key string) (*Trigger, bool) {
	t, ok := m.byKey[key]
	return t, ok
}
