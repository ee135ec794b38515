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

package scheduler

import (
	"container/heap"

	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// seqItem is a ready-to-order node in Kahn's algorithm, ordered by its
// enrollment sequence so that, absent any precedence constraint, resolved
// order matches enrollment order.
type seqItem struct {
	seq int
	id  uint64
}

type seqHeap []seqItem

func (h seqHeap) Len() int            { return len(h) }
func (h seqHeap) Less(i, j int) bool  { return h[i].seq < h[j].seq }
func (h seqHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *seqHeap) Push(x interface{}) { *h = append(*h, x.(seqItem)) }
func (h *seqHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// resolvePrecedence runs Kahn's algorithm over the enrolled Scheduleables
// and declared precedence edges, breaking ties between unconstrained nodes
// by enrollment order. The result is a total order consistent with every
// declared "a precedes b" edge (spec invariant 1) and, beyond that,
// changes the enrollment order as little as possible.
func resolvePrecedence(registry []Scheduleable, edges []edge) (map[uint64]uint64, error) {
	n := len(registry)
	seqOf := make(map[uint64]int, n)
	indeg := make(map[uint64]int, n)
	adj := make(map[uint64][]uint64)

	for i, sc := range registry {
		seqOf[sc.ID()] = i
		indeg[sc.ID()] = 0
	}
	for _, e := range edges {
		adj[e.before] = append(adj[e.before], e.after)
		indeg[e.after]++
	}

	ready := &seqHeap{}
	heap.Init(ready)
	for _, sc := range registry {
		if indeg[sc.ID()] == 0 {
			heap.Push(ready, seqItem{seq: seqOf[sc.ID()], id: sc.ID()})
		}
	}

	order := make(map[uint64]uint64, n)
	var idx uint64
	for ready.Len() > 0 {
		it := heap.Pop(ready).(seqItem)
		order[it.id] = idx
		idx++

		for _, next := range adj[it.id] {
			indeg[next]--
			if indeg[next] == 0 {
				heap.Push(ready, seqItem{seq: seqOf[next], id: next})
			}
		}
	}

	if int(idx) != n {
		return nil, simerrors.Errorf(simerrors.PrecedenceCycleError, "precedence declarations contain a cycle involving %d of %d scheduleables", n-int(idx), n)
	}
	return order, nil
}
