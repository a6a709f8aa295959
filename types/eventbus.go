package types

import (
	"fmt"
	"sync"

	"github.com/trueside/fantoken/logx"
)

const eventBufferSize = 16

// EventBus fans ledger events out to subscribers. Subscribers register for one
// address or for every event with AllAddresses.
type EventBus struct {
	subscribers map[Address][]chan *LedgerEvent
	mu          sync.RWMutex
}

// AllAddresses subscribes to every published event.
const AllAddresses Address = "*"

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[Address][]chan *LedgerEvent),
	}
}

// Subscribe returns a buffered channel receiving events that touch addr
func (eb *EventBus) Subscribe(addr Address) chan *LedgerEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan *LedgerEvent, eventBufferSize)
	eb.subscribers[addr] = append(eb.subscribers[addr], ch)
	logx.Debug("EVENTBUS", fmt.Sprintf("Subscribed to %s (total subscribers: %d)", addr, len(eb.subscribers[addr])))
	return ch
}

// Unsubscribe removes ch and closes it
func (eb *EventBus) Unsubscribe(addr Address, ch chan *LedgerEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[addr]
	for i, sub := range subs {
		if sub != ch {
			continue
		}
		eb.subscribers[addr] = append(subs[:i], subs[i+1:]...)
		close(ch)
		if len(eb.subscribers[addr]) == 0 {
			delete(eb.subscribers, addr)
		}
		return
	}
}

// Publish never blocks. Subscribers with a full buffer miss the event.
func (eb *EventBus) Publish(event *LedgerEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	targets := append(event.Addresses(), AllAddresses)
	for _, addr := range targets {
		for _, ch := range eb.subscribers[addr] {
			select {
			case ch <- event:
			default:
				logx.Warn("EVENTBUS", fmt.Sprintf("Subscriber channel full for %s, dropping %s event %s", addr, event.Operation, event.OpID))
			}
		}
	}
}

// GetSubscriberCount returns the number of subscribers for addr
func (eb *EventBus) GetSubscriberCount(addr Address) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers[addr])
}

func (eb *EventBus) GetTotalSubscriptions() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	total := 0
	for _, subs := range eb.subscribers {
		total += len(subs)
	}
	return total
}
