// Package search provides the integer-keyed priority queue used by flood
// fills over the cell arena.
package search

// BucketQueue is a min-priority queue for small non-negative integer
// priorities. Items are arena indices; each bucket is an intrusive linked
// list threaded through a per-item next slice. Items are pushed onto the
// head of their bucket, so equal priorities dequeue most recent first.
type BucketQueue struct {
	priority func(item int) int

	buckets []int // head item per priority, -1 when empty
	next    []int // next item with the same priority, -1 at the tail
	minimum int
	count   int
}

// NewBucketQueue creates a queue for items in [0, capacity) whose current
// priority is read through the priority callback.
func NewBucketQueue(capacity int, priority func(item int) int) *BucketQueue {
	q := &BucketQueue{
		priority: priority,
		next:     make([]int, capacity),
	}
	q.Clear()
	return q
}

// Len returns the number of queued items.
func (q *BucketQueue) Len() int { return q.count }

// Enqueue inserts item at its current priority.
func (q *BucketQueue) Enqueue(item int) {
	q.count++
	p := q.priority(item)
	if p < q.minimum {
		q.minimum = p
	}
	for p >= len(q.buckets) {
		q.buckets = append(q.buckets, -1)
	}
	q.next[item] = q.buckets[p]
	q.buckets[p] = item
}

// Dequeue removes and returns the item with the lowest priority. It
// returns -1 when the queue is empty.
func (q *BucketQueue) Dequeue() int {
	if q.count == 0 {
		return -1
	}
	q.count--
	for ; q.minimum < len(q.buckets); q.minimum++ {
		item := q.buckets[q.minimum]
		if item >= 0 {
			q.buckets[q.minimum] = q.next[item]
			return item
		}
	}
	return -1
}

// Change moves item from oldPriority to its current priority. The item
// must currently be queued under oldPriority.
func (q *BucketQueue) Change(item, oldPriority int) {
	current := q.buckets[oldPriority]
	if current == item {
		q.buckets[oldPriority] = q.next[item]
	} else {
		next := q.next[current]
		for next != item {
			current = next
			next = q.next[current]
		}
		q.next[current] = q.next[item]
	}
	q.Enqueue(item)
	q.count--
}

// Clear empties the queue. Bucket storage is kept for reuse.
func (q *BucketQueue) Clear() {
	q.buckets = q.buckets[:0]
	q.count = 0
	q.minimum = int(^uint(0) >> 1)
}
