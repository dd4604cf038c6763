// Package dedupe merges records from many extraction passes into one ordered
// list, keeping the first record seen for every id.
package dedupe

// Identified is implemented by records carrying a stable id.
type Identified interface {
	Identity() uint64
}

// Add appends r to out unless its id is already in seen. It reports whether
// the record was added. Later duplicates are dropped as-is; fields are never merged.
func Add[T Identified](r T, seen map[uint64]struct{}, out *[]T) bool {
	id := r.Identity()
	if _, dup := seen[id]; dup {
		return false
	}
	seen[id] = struct{}{}
	*out = append(*out, r)
	return true
}

// Aggregator owns a seen-id set and the ordered output. It is not safe for
// concurrent use; batches are fed to it one after another.
type Aggregator[T Identified] struct {
	seen     map[uint64]struct{}
	records  []T
	rejected int
}

// New creates an empty aggregator.
func New[T Identified]() *Aggregator[T] {
	return &Aggregator[T]{seen: make(map[uint64]struct{})}
}

// Seed marks ids as already seen, e.g. ids persisted by an earlier run.
// Seeded ids are rejected without appearing in Records.
func (a *Aggregator[T]) Seed(ids ...uint64) {
	for _, id := range ids {
		a.seen[id] = struct{}{}
	}
}

// Add adds a record if its id is new.
func (a *Aggregator[T]) Add(r T) bool {
	if Add(r, a.seen, &a.records) {
		return true
	}
	a.rejected++
	return false
}

// AddAll adds a batch in order and returns how many records were new.
func (a *Aggregator[T]) AddAll(batch []T) int {
	added := 0
	for _, r := range batch {
		if a.Add(r) {
			added++
		}
	}
	return added
}

// Records returns the accepted records in first-seen order.
func (a *Aggregator[T]) Records() []T {
	return append([]T(nil), a.records...)
}

// IDs returns the ids of the accepted records in first-seen order.
func (a *Aggregator[T]) IDs() []uint64 {
	ids := make([]uint64, len(a.records))
	for i, r := range a.records {
		ids[i] = r.Identity()
	}
	return ids
}

// Len returns the number of accepted records.
func (a *Aggregator[T]) Len() int {
	return len(a.records)
}

// Seen reports whether id has been accepted or seeded.
func (a *Aggregator[T]) Seen(id uint64) bool {
	_, ok := a.seen[id]
	return ok
}

// Rejected returns how many duplicates were dropped.
func (a *Aggregator[T]) Rejected() int {
	return a.rejected
}
