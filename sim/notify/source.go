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

import (
	"reflect"

	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// Handler receives a notification payload. Returning a non-nil error aborts
// the remaining dispatch: PostNotification stops at the first handler that
// errors rather than continuing to notify the rest.
type Handler[T any] func(payload T) error

type handlerEntry[T any] struct {
	id uint64
	fn Handler[T]
}

// NotificationSource is a named, typed publish/subscribe channel, homed at a
// Node in the device tree. Registration order is preserved and is the
// dispatch order; handlers registered directly on the source (via
// RegisterForNotification) dispatch before handlers that matched by walking
// up from home (via RegisterForNotificationAt on home or an ancestor).
type NotificationSource[T any] struct {
	name   string
	nextID uint64

	handlers []handlerEntry[T]

	home  *Node
	typ   reflect.Type
	cache delegateCache

	onObserverCountChange func(added bool)
	inCallback            bool
}

// New constructs a NotificationSource homed at the shared virtual root, for
// a source that isn't otherwise positioned in a device tree. name must
// match [A-Za-z][A-Za-z0-9_]*, contain no adjacent underscores, and not
// collide with a reserved trigger-grammar word.
func New[T any](name string) (*NotificationSource[T], error) {
	return NewAt[T](virtualRoot, name)
}

// NewAt constructs a NotificationSource homed at home, so observers may
// register either directly on the source or at home or any of its
// ancestors via RegisterForNotificationAt.
func NewAt[T any](home *Node, name string) (*NotificationSource[T], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &NotificationSource[T]{name: name, home: home, typ: typeOf[T]()}, nil
}

// Name returns the source's registered name.
func (s *NotificationSource[T]) Name() string { return s.name }

// PostNotification synchronously invokes every directly-registered handler
// in registration order, then every ancestor-registered handler resolved by
// walking from home to the tree root, in registration order. Observers that
// return an error abort the remaining dispatch. Registering or
// deregistering an ancestor observer on a node while a post is being
// dispatched through it is rejected with ReentrantModificationError; the
// trigger engine's reschedule-from-callback still needs to deregister and
// re-register its own direct handler mid-dispatch, so that local list keeps
// its existing, more permissive reentrancy behavior.
func (s *NotificationSource[T]) PostNotification(payload T) error {
	setDispatching(s.home, true)
	defer setDispatching(s.home, false)

	for _, h := range s.handlers {
		if err := h.fn(payload); err != nil {
			return err
		}
	}
	for _, h := range resolveAncestorDelegates(s.home, s.name, s.typ, &s.cache) {
		if err := h.fn(payload); err != nil {
			return err
		}
	}
	return nil
}

// Registration identifies one RegisterForNotification call, for later
// Deregister.
type Registration[T any] struct {
	id  uint64
	src *NotificationSource[T]
}

// Deregister removes the handler this registration was returned for.
func (r *Registration[T]) Deregister() error {
	return r.src.deregister(r.id)
}

// RegisterForNotification appends h to the dispatch list.
func (s *NotificationSource[T]) RegisterForNotification(h Handler[T]) (*Registration[T], error) {
	if s.inCallback {
		return nil, simerrors.Errorf(simerrors.ReentrantModificationError, "%s: cannot register a notification handler from within the observer-count callback", s.name)
	}
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, handlerEntry[T]{id: id, fn: h})
	if len(s.handlers) == 1 {
		s.fireObserverCountChange(true)
	}
	return &Registration[T]{id: id, src: s}, nil
}

func (s *NotificationSource[T]) deregister(id uint64) error {
	if s.inCallback {
		return simerrors.Errorf(simerrors.ReentrantModificationError, "%s: cannot deregister a notification handler from within the observer-count callback", s.name)
	}
	for i, h := range s.handlers {
		if h.id == id {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			if len(s.handlers) == 0 {
				s.fireObserverCountChange(false)
			}
			return nil
		}
	}
	return nil
}

func (s *NotificationSource[T]) fireObserverCountChange(added bool) {
	if s.onObserverCountChange == nil {
		return
	}
	s.inCallback = true
	s.onObserverCountChange(added)
	s.inCallback = false
}

// OnObserverCountChange installs cb to be called once when the observer
// count transitions from zero to one ("added") and once when it transitions
// back to zero ("removed"). Only one callback may be installed; a later call
// replaces the earlier one.
func (s *NotificationSource[T]) OnObserverCountChange(cb func(added bool)) {
	s.onObserverCountChange = cb
}

// ObserverCount returns the number of currently registered handlers.
func (s *NotificationSource[T]) ObserverCount() int { return len(s.handlers) }
