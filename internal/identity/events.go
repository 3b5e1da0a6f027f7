// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"sync"
)

// # Typed Events

// Event is a notification published by the identity client.
//
// The concrete types are [EventReady] and [EventChanged].
type Event interface {
	isEvent()
}

// EventReady fires once per Init, carrying either a usable client or the init error.
type EventReady struct {
	Client *Client
	Err    error
}

// EventChanged fires on every sign-in and sign-out. Identity is nil when signed out.
type EventChanged struct {
	Identity *Identity
}

func (EventReady) isEvent()   {}
func (EventChanged) isEvent() {}

// # Event Bus

// defaultSubscriberBuffer is used when Subscribe is called with a non-positive buffer.
const defaultSubscriberBuffer = 16

// Bus fans events out to subscribers.
//
// Publish never blocks: a subscriber whose buffer is full misses the event.
// The latest [EventReady] is replayed to late subscribers so nobody waits on
// an init that already happened.
type Bus struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan Event
	lastReady   *EventReady
	dropped     int
}

// NewBus creates an empty [Bus].
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned func unsubscribes and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	events := make(chan Event, buffer)
	b.subscribers[id] = events

	if b.lastReady != nil {
		events <- *b.lastReady
	}

	var once sync.Once
	return events, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
			close(events)
		})
	}
}

// Publish delivers event to every subscriber without blocking.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ready, ok := event.(EventReady); ok {
		b.lastReady = &ready
	}

	for _, events := range b.subscribers {
		select {
		case events <- event:
		default:
			b.dropped++
		}
	}
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (b *Bus) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// reset forgets the replayed ready event.
func (b *Bus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastReady = nil
}
