package catalog

type record[T any] interface {
	key() int
	withKey(id int) T
}

// Table is an ordered set of rows with integer ids.
// The zero value is an empty table.
type Table[T record[T]] struct {
	rows []T
	last int
}

// Find returns the first row matching pred.
func (t *Table[T]) Find(pred func(T) bool) (T, bool) {
	for _, r := range t.rows {
		if pred(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Get returns the row with the given id.
func (t *Table[T]) Get(id int) (T, bool) {
	return t.Find(func(r T) bool { return r.key() == id })
}

// Insert appends v with the next free id and returns the stored row.
func (t *Table[T]) Insert(v T) T {
	t.last++
	v = v.withKey(t.last)
	t.rows = append(t.rows, v)
	return v
}

// All returns a copy of the rows in insertion order.
func (t *Table[T]) All() []T {
	return append([]T(nil), t.rows...)
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	return len(t.rows)
}

func (t *Table[T]) load(rows []T) {
	t.rows = append([]T(nil), rows...)
	t.last = 0
	for _, r := range rows {
		t.last = max(t.last, r.key())
	}
}
