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
	"fmt"
	"sort"
	"strings"
)

// Pool owns every Tracker unit ever acquired for one Enum type. A retired
// unit's accumulated ticks are folded into the pool's running total before
// its storage is recycled, so the teardown histogram reflects every State
// that ever used the pool, not just the ones still live.
type Pool struct {
	enumName string
	labels   map[int]string
	values   []int // declared value range, ascending, for stable histogram order

	allocated int
	retired   map[int]uint64
	live      []*Tracker
	free      []*Tracker
}

// NewPool declares a Pool for an Enum type named enumName (typically the Go
// type's name), covering the inclusive value range [first, last].
func NewPool[E Enum](enumName string, first, last int) *Pool {
	labels := make(map[int]string, last-first+1)
	values := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		labels[i] = E(i).String()
		values = append(values, i)
	}
	return &Pool{enumName: enumName, labels: labels, values: values, retired: make(map[int]uint64)}
}

// Acquire returns a fresh Tracker, recycling a retired unit's storage when
// one is available.
func (p *Pool) Acquire() *Tracker {
	p.allocated++

	var u *Tracker
	if n := len(p.free); n > 0 {
		u = p.free[n-1]
		p.free = p.free[:n-1]
		for k := range u.ticks {
			delete(u.ticks, k)
		}
		u.current = 0
	} else {
		u = &Tracker{pool: p, ticks: make(map[int]uint64)}
	}
	p.live = append(p.live, u)
	return u
}

// Release retires u: its accumulated ticks are folded into the pool's
// running total, and its storage returned to the free list for the next
// Acquire.
func (p *Pool) Release(u *Tracker) {
	for v, ticks := range u.ticks {
		p.retired[v] += ticks
	}
	for i, l := range p.live {
		if l == u {
			p.live = append(p.live[:i], p.live[i+1:]...)
			break
		}
	}
	p.free = append(p.free, u)
}

// Histogram renders the pool's aggregate-and-average residency table in the
// plain-text format spec.md §6 describes.
func (p *Pool) Histogram() string {
	agg := make(map[int]uint64, len(p.values))
	for v, ticks := range p.retired {
		agg[v] += ticks
	}
	for _, u := range p.live {
		for v, ticks := range u.ticks {
			agg[v] += ticks
		}
	}

	sorted := append([]int(nil), p.values...)
	sort.Ints(sorted)

	var b strings.Builder
	fmt.Fprintf(&b, "Enum Class Name : %s\n", p.enumName)
	fmt.Fprintf(&b, "Total State Tracker Units used : %d\n", p.allocated)
	b.WriteString("Aggregate Residency Stats:\n")
	for _, v := range sorted {
		fmt.Fprintf(&b, "  %s : %d\n", p.labels[v], agg[v])
	}
	b.WriteString("\nAverage Residency Stats:\n")
	for _, v := range sorted {
		var avg uint64
		if p.allocated > 0 {
			avg = agg[v] / uint64(p.allocated)
		}
		fmt.Fprintf(&b, "  %s : %d\n", p.labels[v], avg)
	}
	return b.String()
}
