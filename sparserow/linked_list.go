package sparserow

import "container/list"

// LinkedList is a doubly-linked-list-backed sparse row, used where
// in-place deletion during traversal matters — mirrors the original
// SparseUnsortedList, which exists specifically because erasing by
// swap (as UnsortedArray does) invalidates an in-progress iterator.
type LinkedList struct {
	size int
	l    *list.List
	// index maps a stored column index to its *list.Element, so Get and
	// Set stay O(1) average instead of O(n) list scans.
	index map[int]*list.Element
}

// NewLinkedList allocates an empty row of the given logical size.
func NewLinkedList(size int) *LinkedList {
	return &LinkedList{size: size, l: list.New(), index: make(map[int]*list.Element)}
}

// Size returns the logical dimension of the row.
func (r *LinkedList) Size() int { return r.size }

// Get returns the value at index, or 0 if absent.
func (r *LinkedList) Get(index int) float64 {
	if e, ok := r.index[index]; ok {
		return e.Value.(Entry).Value
	}
	return 0
}

// Set assigns value at index, erasing the entry if value is zero.
func (r *LinkedList) Set(index int, value float64) {
	e, ok := r.index[index]
	if value == 0 {
		if ok {
			r.l.Remove(e)
			delete(r.index, index)
		}
		return
	}
	if ok {
		e.Value = Entry{Index: index, Value: value}
		return
	}
	r.index[index] = r.l.PushBack(Entry{Index: index, Value: value})
}

// NNZ returns the number of stored non-zero entries.
func (r *LinkedList) NNZ() int { return r.l.Len() }

// ForEach visits every stored entry in list order. fn may call Erase on
// the current entry's index safely; it must not erase other entries
// mid-traversal.
func (r *LinkedList) ForEach(fn func(index int, value float64)) {
	for e := r.l.Front(); e != nil; {
		next := e.Next()
		entry := e.Value.(Entry)
		fn(entry.Index, entry.Value)
		e = next
	}
}

// ToDense fills target with the row's values, zeroing it first.
func (r *LinkedList) ToDense(target []float64) {
	for i := range target {
		target[i] = 0
	}
	for e := r.l.Front(); e != nil; e = e.Next() {
		entry := e.Value.(Entry)
		target[entry.Index] = entry.Value
	}
}

// Clone returns a deep, independent copy.
func (r *LinkedList) Clone() Row {
	cp := NewLinkedList(r.size)
	for e := r.l.Front(); e != nil; e = e.Next() {
		entry := e.Value.(Entry)
		cp.index[entry.Index] = cp.l.PushBack(entry)
	}
	return cp
}

// Erase removes the entry at index in O(1), safe to call while a
// ForEach traversal holds a reference to a different entry.
func (r *LinkedList) Erase(index int) {
	if e, ok := r.index[index]; ok {
		r.l.Remove(e)
		delete(r.index, index)
	}
}
