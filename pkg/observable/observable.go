// Package observable provides a last-value-cached state container:
// single writer, many readers, every subscriber sees the latest value
// first and every subsequent change after that.
package observable

import "sync"

// Value holds a single observable value of type T. The zero Value is
// ready to use and holds nothing until the first Set.
//
// Delivery is asynchronous with respect to Set: subscribers receive on
// their own channels and must not assume they run on the writer's
// goroutine. A subscriber that falls behind has its oldest pending value
// dropped rather than blocking the writer.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	hasValue bool
	subs    map[int]chan T
	nextID  int
}

// New creates a Value seeded with an initial value.
func New[T any](initial T) *Value[T] {
	v := &Value[T]{}
	v.Set(initial)
	return v
}

// Set stores v as the current value and notifies all subscribers.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = v
	o.hasValue = true
	for _, ch := range o.subs {
		send(ch, v)
	}
}

// Get returns the current value and whether one has been set.
func (o *Value[T]) Get() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current, o.hasValue
}

// Subscribe registers a new subscriber and returns its channel together
// with a cancel function. If a value is already set it is delivered
// immediately. The channel is closed on cancel.
func (o *Value[T]) Subscribe() (<-chan T, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.subs == nil {
		o.subs = make(map[int]chan T)
	}
	id := o.nextID
	o.nextID++

	ch := make(chan T, 16)
	o.subs[id] = ch
	if o.hasValue {
		send(ch, o.current)
	}

	cancel := func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if c, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// send delivers v without ever blocking the writer. When the subscriber's
// buffer is full the oldest pending value is discarded: observers care
// about the latest state, not the full history.
func send[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
