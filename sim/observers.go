package sim

import "sync"

type observer struct {
	id uint64
	fn func()
}

// observers is the engine's subscriber registry. It has its own lock so
// callbacks may subscribe or unsubscribe while a notification is running.
type observers struct {
	mu     sync.Mutex
	nextID uint64
	list   []observer
}

func (o *observers) add(fn func()) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.list = append(o.list, observer{id: id, fn: fn})

	return func() { o.remove(id) }
}

func (o *observers) remove(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, obs := range o.list {
		if obs.id == id {
			o.list = append(o.list[:i:i], o.list[i+1:]...)
			return
		}
	}
}

// notify calls every observer registered when it started, in registration
// order.
func (o *observers) notify() {
	o.mu.Lock()
	fns := make([]func(), len(o.list))
	for i, obs := range o.list {
		fns[i] = obs.fn
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
