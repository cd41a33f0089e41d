package pipeline

import (
	"sync"
	"time"
)

// Stage identifies a step of the valuation pipeline in progress events.
type Stage string

const (
	StageUniverse Stage = "universe"
	StageCollect  Stage = "collect"
	StageValuate  Stage = "valuate"
	StageReport   Stage = "report"
	StagePersist  Stage = "persist"
	StageDone     Stage = "done"
	StageFailed   Stage = "failed"
)

// Event is one progress update from a pipeline run. Events are
// broadcast to all subscribers (the websocket endpoint among them).
type Event struct {
	Stage   Stage     `json:"stage"`
	Message string    `json:"message"`
	Count   int       `json:"count,omitempty"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// Broker fans pipeline events out to subscribers. Slow subscribers
// lose events rather than blocking the pipeline.
type Broker struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroker creates an event broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber channel.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish broadcasts an event. Sends never block: a subscriber with a
// full buffer misses the event.
func (b *Broker) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
