// Package store holds a value that is only ever replaced wholesale and tells
// its subscribers after each replacement.
package store

import "sync"

type Store[T any] struct {
	mutex       sync.RWMutex
	value       T
	subscribers map[int]func(T)
	order       []int
	nextID      int
}

func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value:       initial,
		subscribers: make(map[int]func(T)),
	}
}

func (that *Store[T]) Get() T {
	that.mutex.RLock()
	defer that.mutex.RUnlock()

	return that.value
}

// Replace discards the previous value, then notifies subscribers in
// subscription order with the new one.
func (that *Store[T]) Replace(value T) {
	that.mutex.Lock()
	that.value = value

	subscribers := make([]func(T), 0, len(that.order))
	for _, id := range that.order {
		subscribers = append(subscribers, that.subscribers[id])
	}
	that.mutex.Unlock()

	for _, notify := range subscribers {
		notify(value)
	}
}

// Subscribe registers fn for future replacements and returns a function that
// removes it.
func (that *Store[T]) Subscribe(fn func(T)) func() {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	id := that.nextID
	that.nextID++
	that.subscribers[id] = fn
	that.order = append(that.order, id)

	var once sync.Once

	return func() {
		once.Do(func() {
			that.mutex.Lock()
			defer that.mutex.Unlock()

			delete(that.subscribers, id)
			for i, existing := range that.order {
				if existing == id {
					that.order = append(that.order[:i], that.order[i+1:]...)
					break
				}
			}
		})
	}
}
