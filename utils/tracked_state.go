package utils

// Tracker remembers the previous distinct value and the cycle it changed on.
type Tracker[T comparable] struct {
	LastValue    T
	Value        T
	UpdatedCycle int
	Changes      int
}

func (t *Tracker[T]) Update(val T, cycle int) (updated bool) {
	if t.Value == val {
		return false
	}
	t.LastValue = t.Value
	t.Value = val
	t.UpdatedCycle = cycle
	t.Changes++
	return true
}

func (t *Tracker[T]) Reset(val T) {
	var zero T
	t.LastValue = zero
	t.Value = val
	t.UpdatedCycle = 0
	t.Changes = 0
}
