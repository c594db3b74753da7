package regalloc

import "box/internal/boxerr"

// endOfVarChain marks the end of the free-variable chain. Indices are
// 1-based like internal/pool, so 0 is never a valid slot and doubles as the
// terminator without needing a separate sentinel.
const endOfVarChain = 0

// varItem is one slot in a variable pool: occupied slots carry no payload
// (callers identify a variable by its slot number alone), free slots carry
// the scope level they were released at and a link to the next free slot.
type varItem struct {
	occupied bool
	level    int
	next     int
}

// varPool is the level-gated free list behind Var_Occupy/Var_Release: unlike
// internal/pool's LIFO reuse, a free slot here is only reissued to a request
// whose level is at least as deep as the level it was released at, and the
// free list is scanned front-to-back to find the first such slot rather than
// always taking the head.
type varPool struct {
	items   []varItem
	head    int
	maxUsed int
}

func newVarPool() *varPool {
	return &varPool{head: endOfVarChain}
}

// occupy returns a slot usable at scope depth level: either the first free
// slot whose release level was <= level, or a freshly grown one.
func (v *varPool) occupy(level int) int {
	prev := endOfVarChain
	cur := v.head
	for cur != endOfVarChain {
		item := &v.items[cur-1]
		if item.level <= level {
			if prev == endOfVarChain {
				v.head = item.next
			} else {
				v.items[prev-1].next = item.next
			}
			item.occupied = true
			return cur
		}
		prev = cur
		cur = item.next
	}

	v.items = append(v.items, varItem{occupied: true})
	idx := len(v.items)
	if idx > v.maxUsed {
		v.maxUsed = idx
	}
	return idx
}

// release frees index, recording level as the scope depth at which it
// becomes reissuable.
func (v *varPool) release(index, level int) error {
	if index < 1 || index > len(v.items) {
		return boxerr.New(boxerr.SlotOutOfRange, "regalloc: release of out-of-range variable %d", index)
	}
	item := &v.items[index-1]
	if !item.occupied {
		return boxerr.New(boxerr.SlotNotOccupied, "regalloc: release of non-occupied variable %d", index)
	}
	item.occupied = false
	item.level = level
	item.next = v.head
	v.head = index
	return nil
}

func (v *varPool) maxIndex() int {
	return v.maxUsed
}
