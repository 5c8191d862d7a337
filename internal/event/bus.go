// Package event provides a pub/sub event system for the daemon using watermill.
package event

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventType represents the type of event.
type EventType string

const (
	EffectInvoked  EventType = "effect.invoked"
	JobStarted     EventType = "job.started"
	JobFinished    EventType = "job.finished"
	ResultsChanged EventType = "results.changed"
	ConfigReloaded EventType = "config.reloaded"
)

// StreamTopic is the watermill topic every published event is mirrored
// to in JSON form.
const StreamTopic = "events"

// Event represents an event to be published.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Subscriber is a function that receives events.
type Subscriber func(event Event)

// subscription is one registered subscriber. A nil filter receives
// every event.
type subscription struct {
	id     uint64
	filter *EventType
	fn     Subscriber
}

// Bus is the event bus that manages pub/sub. Typed subscribers are
// called directly so Event.Data keeps its concrete type; alongside the
// direct calls, every event is mirrored in JSON onto a watermill
// gochannel topic for consumers that want the wire form.
type Bus struct {
	mu     sync.Mutex
	subs   []subscription
	nextID uint64
	closed bool

	pubsub *gochannel.GoChannel
}

// globalBus is the default bus instance. Reset swaps it wholesale, so
// access goes through an atomic pointer.
var globalBus atomic.Pointer[Bus]

func init() {
	globalBus.Store(NewBus())
}

// NewBus creates a new event bus instance.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 100,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
	}
}

// Subscribe registers a subscriber for a specific event type on the
// global bus. Returns an unsubscribe function.
func Subscribe(eventType EventType, fn Subscriber) func() {
	return globalBus.Load().Subscribe(eventType, fn)
}

func (b *Bus) Subscribe(eventType EventType, fn Subscriber) func() {
	return b.add(&eventType, fn)
}

// SubscribeAll registers a subscriber for all events on the global bus.
// Returns an unsubscribe function.
func SubscribeAll(fn Subscriber) func() {
	return globalBus.Load().SubscribeAll(fn)
}

func (b *Bus) SubscribeAll(fn Subscriber) func() {
	return b.add(nil, fn)
}

func (b *Bus) add(filter *EventType, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, filter: filter, fn: fn})

	return func() { b.remove(id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// recipients snapshots, under the lock, the subscribers that should see
// an event of type t. The second return is false when the bus is
// closed.
func (b *Bus) recipients(t EventType) ([]Subscriber, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, false
	}
	fns := make([]Subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.filter == nil || *sub.filter == t {
			fns = append(fns, sub.fn)
		}
	}
	return fns, true
}

// Publish sends an event to all subscribers asynchronously on the
// global bus. Each subscriber is called in its own goroutine to
// prevent blocking.
func Publish(event Event) {
	globalBus.Load().Publish(event)
}

func (b *Bus) Publish(event Event) {
	fns, open := b.recipients(event.Type)
	if !open {
		return
	}
	b.mirror(event)
	for _, fn := range fns {
		go fn(event)
	}
}

// PublishSync sends an event to all subscribers on the global bus
// synchronously. Subscribers are called in subscription order in the
// current goroutine before returning.
func PublishSync(event Event) {
	globalBus.Load().PublishSync(event)
}

func (b *Bus) PublishSync(event Event) {
	fns, open := b.recipients(event.Type)
	if !open {
		return
	}
	b.mirror(event)
	for _, fn := range fns {
		fn(event)
	}
}

// mirror republishes the event as a JSON message on the stream topic,
// with the event type in the message metadata. Events whose data
// cannot be marshalled stay off the stream; typed delivery already
// happened.
func (b *Bus) mirror(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(event.Type))
	_ = b.pubsub.Publish(StreamTopic, msg)
}

// Stream subscribes to the JSON mirror of every event published on the
// global bus.
func Stream(ctx context.Context) (<-chan *message.Message, error) {
	return globalBus.Load().Stream(ctx)
}

// Stream subscribes to the bus's JSON event stream. The channel closes
// when ctx is cancelled or the bus is closed. Messages must be acked.
func (b *Bus) Stream(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, StreamTopic)
}

// Close closes the bus. Publishing to and subscribing on a closed bus
// are no-ops.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.subs = nil
	b.mu.Unlock()

	return b.pubsub.Close()
}

// Reset replaces the global bus with a fresh one, dropping all
// subscribers (for testing).
func Reset() {
	old := globalBus.Swap(NewBus())
	_ = old.Close()
}
