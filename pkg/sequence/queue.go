package sequence

// Queue is a generic FIFO queue. Dequeue order is exactly enqueue order;
// there is no priority or reordering. The zero value is not usable, use
// NewQueue.
type Queue[T any] struct {
	items []T
	head  int
}

// NewQueue creates an empty FIFO queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue appends a value to the back of the queue.
func (q *Queue[T]) Enqueue(value T) {
	q.items = append(q.items, value)
}

// Dequeue removes and returns the value at the front of the queue.
// The second return value is false when the queue is empty.
func (q *Queue[T]) Dequeue() (T, bool) {
	if q.head >= len(q.items) {
		var zero T
		return zero, false
	}
	item := q.items[q.head]
	var zero T
	q.items[q.head] = zero // release reference
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return item, true
}

// Peek returns the front value without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.head >= len(q.items) {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

// Drain removes every queued value in FIFO order, invoking fn for each.
// Values enqueued by fn itself are drained in the same pass.
func (q *Queue[T]) Drain(fn func(T) error) error {
	for {
		item, ok := q.Dequeue()
		if !ok {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// IsEmpty reports whether the queue holds no values.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}
