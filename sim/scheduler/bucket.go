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

	"github.com/jetsetilly/uarchsim/sim/clock"
	"github.com/jetsetilly/uarchsim/sim/phase"
)

// item is one pending firing: a Scheduleable scheduled for a particular
// (tick, phase), ordered first by its finalized precedence index and then
// by the order in which it was pushed into the bucket.
type item struct {
	sc Scheduleable

	tick  clock.Tick // the tick this item is pending in, used by Cancel
	order uint64      // precedence-resolved topological index, assigned at Finalize
	seq   uint64      // bucket insertion sequence, assigned at schedule time

	index int // maintained by heap.Interface, used for O(1)-ish cancellation
}

// phaseHeap is a min-heap of items ordered by (order, seq), giving "pop the
// smallest element by total-order index" (spec §4.1) with insertion order
// as the tie-break.
type phaseHeap []*item

func (h phaseHeap) Len() int { return len(h) }

func (h phaseHeap) Less(i, j int) bool {
	if h[i].order != h[j].order {
		return h[i].order < h[j].order
	}
	return h[i].seq < h[j].seq
}

func (h phaseHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *phaseHeap) Push(x interface{}) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *phaseHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// tickBuckets holds the per-phase pending queues for a single tick.
type tickBuckets struct {
	heaps []*phaseHeap
}

func newTickBuckets() *tickBuckets {
	return &tickBuckets{heaps: make([]*phaseHeap, phase.Count())}
}

func (b *tickBuckets) heapFor(ph phase.Phase, create bool) *phaseHeap {
	idx := int(ph)
	if b.heaps[idx] == nil {
		if !create {
			return nil
		}
		h := &phaseHeap{}
		heap.Init(h)
		b.heaps[idx] = h
	}
	return b.heaps[idx]
}

func (b *tickBuckets) empty() bool {
	for _, h := range b.heaps {
		if h != nil && h.Len() > 0 {
			return false
		}
	}
	return true
}
