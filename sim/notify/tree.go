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

// Node is a position in the device tree that a NotificationSource can be
// homed at, and that an observer can register against without knowing the
// concrete source: registering at an ancestor node observes every matching
// (name, payload type) channel homed anywhere at or below that node.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	nextID            uint64
	ancestorObservers map[string][]ancestorHandler
	epoch             uint64
	dispatching       bool
}

type ancestorHandler struct {
	id  uint64
	typ reflect.Type
	fn  func(payload interface{}) error
}

// virtualRoot is the implicit tree position every NotificationSource
// constructed with New (rather than NewAt) is homed at, matching spec's
// "at any ancestor node (or a virtual root)".
var virtualRoot = &Node{name: ""}

// Root returns the shared virtual root every untethered NotificationSource
// is homed at.
func Root() *Node { return virtualRoot }

// NewNode constructs a root-less tree node. Use Parent.NewChild to attach it
// under an existing tree instead, if it should participate in ancestor
// propagation with other nodes.
func NewNode(name string) *Node {
	return &Node{name: name}
}

// NewChild constructs a node parented under n.
func (n *Node) NewChild(name string) *Node {
	child := &Node{name: name, parent: n}
	n.children = append(n.children, child)
	return child
}

// Name returns the node's own name.
func (n *Node) Name() string { return n.name }

// Parent returns the node's parent, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// AncestorRegistration identifies one RegisterForNotificationAt call, for
// later Deregister.
type AncestorRegistration struct {
	node *Node
	name string
	id   uint64
}

// Deregister removes the handler this registration was returned for.
func (r *AncestorRegistration) Deregister() error {
	if r.node.dispatching {
		return simerrors.Errorf(simerrors.ReentrantModificationError, "%s: cannot deregister an ancestor observer while a notification is being posted through this node", r.node.name)
	}
	handlers := r.node.ancestorObservers[r.name]
	for i, h := range handlers {
		if h.id == r.id {
			r.node.ancestorObservers[r.name] = append(handlers[:i], handlers[i+1:]...)
			r.node.epoch++
			return nil
		}
	}
	return nil
}

// RegisterForNotificationAt registers h to observe every NotificationSource[T]
// named name homed at node or at any of node's descendants. This is the
// ancestor-propagation counterpart to NotificationSource.RegisterForNotification,
// which only observes one concrete source directly.
func RegisterForNotificationAt[T any](node *Node, name string, h Handler[T]) (*AncestorRegistration, error) {
	if node.dispatching {
		return nil, simerrors.Errorf(simerrors.ReentrantModificationError, "%s: cannot register an ancestor observer while a notification is being posted through this node", node.name)
	}
	if node.ancestorObservers == nil {
		node.ancestorObservers = make(map[string][]ancestorHandler)
	}
	node.nextID++
	id := node.nextID
	entry := ancestorHandler{
		id:  id,
		typ: typeOf[T](),
		fn: func(payload interface{}) error {
			v, ok := payload.(T)
			if !ok {
				return nil
			}
			return h(v)
		},
	}
	node.ancestorObservers[name] = append(node.ancestorObservers[name], entry)
	node.epoch++
	return &AncestorRegistration{node: node, name: name, id: id}, nil
}

// delegateCache memoizes a source's resolved ancestor-chain delegate list,
// keyed by the sum of every ancestor's epoch at the time it was built — the
// "cached delegate list rebuilt by walking parents" the tree invalidates
// whenever a node along the chain gains or loses an ancestor observer.
type delegateCache struct {
	valid    bool
	epochSum uint64
	list     []ancestorHandler
}

func resolveAncestorDelegates(home *Node, name string, typ reflect.Type, cache *delegateCache) []ancestorHandler {
	var sum uint64
	for n := home; n != nil; n = n.parent {
		sum += n.epoch
	}
	if cache.valid && cache.epochSum == sum {
		return cache.list
	}

	var list []ancestorHandler
	for n := home; n != nil; n = n.parent {
		for _, h := range n.ancestorObservers[name] {
			if h.typ == typ {
				list = append(list, h)
			}
		}
	}
	cache.valid = true
	cache.epochSum = sum
	cache.list = list
	return list
}

func setDispatching(home *Node, v bool) {
	for n := home; n != nil; n = n.parent {
		n.dispatching = v
	}
}
