// Package events is a small in-process, typed publish/subscribe bus.
// Subscribers run synchronously on the publisher's goroutine; a panicking
// subscriber is logged and does not affect the others.
package events

import (
	"log"
	"reflect"
	"sync"
)

type subscriber struct {
	id uint64
	fn func(any)
}

var (
	mu     sync.RWMutex
	nextID uint64
	subs   = map[reflect.Type][]subscriber{}
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem() // *T -> T without a value
}

// Subscribe registers fn for events of type T and returns its cancel func.
func Subscribe[T any](fn func(T)) func() {
	key := typeOf[T]()
	wrapped := func(v any) {
		if ev, ok := v.(T); ok {
			fn(ev)
		}
	}

	mu.Lock()
	nextID++
	id := nextID
	subs[key] = append(subs[key], subscriber{id: id, fn: wrapped})
	mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			ss := subs[key]
			for i, s := range ss {
				if s.id == id {
					subs[key] = append(ss[:i:i], ss[i+1:]...)
					break
				}
			}
		})
	}
}

func Publish[T any](ev T) {
	key := typeOf[T]()
	mu.RLock()
	ss := append([]subscriber(nil), subs[key]...)
	mu.RUnlock()
	for _, s := range ss {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[events] subscriber panic on %s: %v", key, r)
				}
			}()
			s.fn(ev)
		}()
	}
}

// Count returns the number of live subscribers for T.
func Count[T any]() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(subs[typeOf[T]()])
}
