package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Subscription is a standing live query. Results are delivered on the store's
// dispatcher goroutine, one delivery at a time, subscriptions in the order
// they were created. The caller must Unsubscribe when done.
type Subscription struct {
	id     uint64
	tables map[string]struct{}
	eval   func(ctx context.Context) (emit func()) // runs the query; emit hands the result to the callback
	active atomic.Bool
	obs    *observers
}

// Unsubscribe stops further deliveries and releases the registry entry.
// A delivery already in progress finishes; none start afterwards.
func (s *Subscription) Unsubscribe() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.obs.remove(s)
}

// Active reports whether the subscription still receives results.
func (s *Subscription) Active() bool { return s.active.Load() }

type event struct {
	targets []*Subscription // subscribed to a table the commit touched, as of the commit
	initial *Subscription   // first delivery for one new subscription
	barrier chan struct{}   // closed once everything before it was delivered
}

// observers is the live-query registry plus its ordered notification queue.
// Commits publish events; one goroutine consumes them, so deliveries never run
// under the writer lock and a callback may itself call Write.
type observers struct {
	mu      sync.Mutex
	subs    []*Subscription
	nextID  uint64
	pending []event
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	closed  bool
}

func newObservers() *observers {
	return &observers{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// add registers a subscription. With initial set, its first delivery is queued
// in the same critical section, so it precedes every commit that targets it and
// commits already queued do not.
func (o *observers) add(tables []string, initial bool, eval func(ctx context.Context) func()) *Subscription {
	set := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		set[t] = struct{}{}
	}
	o.mu.Lock()
	o.nextID++
	sub := &Subscription{id: o.nextID, tables: set, eval: eval, obs: o}
	sub.active.Store(true)
	o.subs = append(o.subs, sub)
	queued := initial && o.pushLocked(event{initial: sub})
	o.mu.Unlock()

	if queued {
		o.signal()
	}
	return sub
}

func (o *observers) remove(sub *Subscription) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, s := range o.subs {
		if s == sub {
			o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
			return
		}
	}
}

// publish queues one delivery for every subscription registered right now
// whose tables intersect the commit's.
func (o *observers) publish(tables map[string]struct{}) {
	o.mu.Lock()
	var targets []*Subscription
	for _, s := range o.subs {
		if s.matches(tables) {
			targets = append(targets, s)
		}
	}
	queued := len(targets) > 0 && o.pushLocked(event{targets: targets})
	o.mu.Unlock()

	if queued {
		o.signal()
	}
}

func (o *observers) flush() {
	ch := make(chan struct{})
	if !o.enqueue(event{barrier: ch}) {
		return
	}
	<-ch
}

func (o *observers) enqueue(e event) bool {
	o.mu.Lock()
	queued := o.pushLocked(e)
	o.mu.Unlock()

	if queued {
		o.signal()
	}
	return queued
}

// pushLocked appends e unless the registry is closed. o.mu must be held.
func (o *observers) pushLocked(e event) bool {
	if o.closed {
		return false
	}
	o.pending = append(o.pending, e)
	return true
}

func (o *observers) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *observers) run() {
	defer close(o.stopped)
	for {
		select {
		case <-o.wake:
			o.drain()
		case <-o.done:
			o.drain()
			return
		}
	}
}

func (o *observers) drain() {
	for {
		o.mu.Lock()
		if len(o.pending) == 0 {
			o.mu.Unlock()
			return
		}
		e := o.pending[0]
		o.pending = o.pending[1:]
		o.mu.Unlock()

		switch {
		case e.barrier != nil:
			close(e.barrier)
		case e.initial != nil:
			deliver(e.initial)
		default:
			for _, s := range e.targets {
				deliver(s)
			}
		}
	}
}

func (o *observers) stop() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()
	close(o.done)
	<-o.stopped
}

func (s *Subscription) matches(tables map[string]struct{}) bool {
	for t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}

func deliver(s *Subscription) {
	if !s.active.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Uint64("subscription", s.id).Interface("panic", r).Msg("live query callback panicked")
		}
	}()
	emit := s.eval(context.Background())
	// Re-checked after the query: an Unsubscribe during it wins.
	if emit != nil && s.active.Load() {
		emit()
	}
}
