package core

import (
	"sync"
)

// WorkQueue is a minimal FIFO queue with de-duplication, used to coalesce
// reconcile triggers for the same AppDeployment.
type WorkQueue[T comparable] struct {
	mutex sync.Mutex
	set   map[T]struct{}
	items []T
}

func NewWorkQueue[T comparable]() *WorkQueue[T] {
	return &WorkQueue[T]{set: make(map[T]struct{}), items: make([]T, 0)}
}

// Add enqueues an item unless it is already pending.
func (queue *WorkQueue[T]) Add(item T) {
	queue.mutex.Lock()
	defer queue.mutex.Unlock()

	if _, exists := queue.set[item]; exists {
		return
	}

	queue.set[item] = struct{}{}
	queue.items = append(queue.items, item)
}

// Get dequeues the oldest item, reporting false when the queue is empty.
func (queue *WorkQueue[T]) Get() (T, bool) {
	queue.mutex.Lock()
	defer queue.mutex.Unlock()

	var zero T

	if len(queue.items) == 0 {
		return zero, false
	}

	item := queue.items[0]

	queue.items = queue.items[1:]
	delete(queue.set, item)

	return item, true
}

// Has reports whether an item is currently pending.
func (queue *WorkQueue[T]) Has(item T) bool {
	queue.mutex.Lock()
	defer queue.mutex.Unlock()

	_, exists := queue.set[item]
	return exists
}

func (queue *WorkQueue[T]) Len() int {
	queue.mutex.Lock()
	defer queue.mutex.Unlock()

	return len(queue.items)
}
