// Package pool implements the slot-reusing indexed container that backs the
// register/variable tables and the symbol table: a growable store of fixed-size
// slots where released slots are threaded onto a free-list and reissued LIFO.
//
// Modeled on box/src/array.c and box/src/collection.c (Clc_Occupy/Clc_Release/
// Clc_MaxIndex): occupied slots hold a value, free slots are linked into a chain
// through a parallel slice of next-free indices. Indices are 1-based; 0 is reserved
// by callers (the VM's scratch slot) and is never returned by Occupy.
package pool

import "github.com/pkg/errors"

const endOfChain = -1

// Pool is a slot-reusing indexed container of T. The zero value is not usable;
// construct with New.
type Pool[T any] struct {
	items    []T
	occupied []bool
	// free chains the most recently released slot to the next; -1 terminates.
	free    []int
	head    int
	maxUsed int
}

// New creates a pool with the given initial capacity (a hint, not a limit —
// the pool grows as needed).
func New[T any](initialCapacity int) *Pool[T] {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	return &Pool[T]{
		items:    make([]T, 0, initialCapacity),
		occupied: make([]bool, 0, initialCapacity),
		free:     make([]int, 0, initialCapacity),
		head:     endOfChain,
	}
}

// Occupy returns a new 1-based slot index, growing the pool if no released slot
// is available. The slot's value is left at T's zero value.
func (p *Pool[T]) Occupy() int {
	var zero T
	return p.OccupyWith(zero)
}

// OccupyWith is Occupy but copies v into the new slot.
func (p *Pool[T]) OccupyWith(v T) int {
	if p.head != endOfChain {
		idx := p.head
		p.head = p.free[idx]
		p.items[idx] = v
		p.occupied[idx] = true
		return idx + 1
	}
	p.items = append(p.items, v)
	p.occupied = append(p.occupied, true)
	p.free = append(p.free, endOfChain)
	idx := len(p.items) - 1
	if idx+1 > p.maxUsed {
		p.maxUsed = idx + 1
	}
	return idx + 1
}

// Release marks a slot free, threading it onto the free-list for LIFO reuse.
// Releasing an already-free or out-of-range slot is an error.
func (p *Pool[T]) Release(index int) error {
	i := index - 1
	if i < 0 || i >= len(p.items) {
		return errors.Errorf("pool: release of out-of-range slot %d", index)
	}
	if !p.occupied[i] {
		return errors.Errorf("pool: release of non-occupied slot %d", index)
	}
	p.occupied[i] = false
	p.free[i] = p.head
	p.head = i
	return nil
}

// ItemPtr returns a pointer to the stored element, or nil if the slot is free
// or out of range.
func (p *Pool[T]) ItemPtr(index int) *T {
	i := index - 1
	if i < 0 || i >= len(p.items) || !p.occupied[i] {
		return nil
	}
	return &p.items[i]
}

// IsOccupied reports whether index currently holds a value.
func (p *Pool[T]) IsOccupied(index int) bool {
	i := index - 1
	return i >= 0 && i < len(p.items) && p.occupied[i]
}

// MaxIndex returns the highest index ever issued by Occupy/OccupyWith — the
// count of distinct slot ids ever used, regardless of current occupancy.
func (p *Pool[T]) MaxIndex() int {
	return p.maxUsed
}

// Iterate visits every currently-occupied slot in ascending index order.
func (p *Pool[T]) Iterate(visit func(index int, item *T) error) error {
	for i := range p.items {
		if !p.occupied[i] {
			continue
		}
		if err := visit(i+1, &p.items[i]); err != nil {
			return err
		}
	}
	return nil
}
