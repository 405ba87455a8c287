package sparserow

// UnsortedArray is a dynamic-array-backed sparse row. Append is
// amortized O(1) (Go's slice growth), lookup is O(n), and erase is
// O(n) with swap-to-last-then-truncate, matching the original
// SparseUnsortedArray's erase-by-swap discipline exactly.
type UnsortedArray struct {
	size    int
	entries []Entry
}

// NewUnsortedArray allocates an empty row of the given logical size.
func NewUnsortedArray(size int) *UnsortedArray {
	return &UnsortedArray{size: size}
}

// Size returns the logical dimension of the row.
func (a *UnsortedArray) Size() int { return a.size }

func (a *UnsortedArray) find(index int) int {
	for i, e := range a.entries {
		if e.Index == index {
			return i
		}
	}
	return -1
}

// Get returns the value at index, or 0 if absent.
func (a *UnsortedArray) Get(index int) float64 {
	if i := a.find(index); i >= 0 {
		return a.entries[i].Value
	}
	return 0
}

// Set assigns value at index, erasing the entry if value is zero.
// Complexity: O(n) (linear scan to find an existing entry).
func (a *UnsortedArray) Set(index int, value float64) {
	i := a.find(index)
	if value == 0 {
		if i >= 0 {
			a.eraseAt(i)
		}
		return
	}
	if i >= 0 {
		a.entries[i].Value = value
		return
	}
	a.entries = append(a.entries, Entry{Index: index, Value: value})
}

// NNZ returns the number of stored non-zero entries.
func (a *UnsortedArray) NNZ() int { return len(a.entries) }

// ForEach visits every stored entry in storage order.
func (a *UnsortedArray) ForEach(fn func(index int, value float64)) {
	for _, e := range a.entries {
		fn(e.Index, e.Value)
	}
}

// ToDense fills target with the row's values, zeroing it first.
func (a *UnsortedArray) ToDense(target []float64) {
	for i := range target {
		target[i] = 0
	}
	for _, e := range a.entries {
		target[e.Index] = e.Value
	}
}

// Clone returns a deep, independent copy.
func (a *UnsortedArray) Clone() Row {
	cp := make([]Entry, len(a.entries))
	copy(cp, a.entries)
	return &UnsortedArray{size: a.size, entries: cp}
}

// Erase removes the entry at index, swapping the last entry into its
// place to keep the backing array compact (erase-by-swap, O(1) beyond
// the O(n) lookup).
func (a *UnsortedArray) Erase(index int) {
	if i := a.find(index); i >= 0 {
		a.eraseAt(i)
	}
}

func (a *UnsortedArray) eraseAt(i int) {
	last := len(a.entries) - 1
	a.entries[i] = a.entries[last]
	a.entries = a.entries[:last]
}
