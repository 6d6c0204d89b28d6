package fetchers

import (
	"sync"

	"covidviz/internal/models"
)

// Ready is a single-fire "data ready" notification. Subscribers run
// synchronously, in subscription order, on the goroutine that publishes.
// Subscribing after the notification fired runs the subscriber at once.
type Ready struct {
	once sync.Once
	done chan struct{}

	mu    sync.Mutex
	subs  []func(*models.Store)
	store *models.Store
	err   error
}

// NewReady creates an unfired notification.
func NewReady() *Ready {
	return &Ready{done: make(chan struct{})}
}

// Subscribe registers fn for the store. fn is not called when the load failed.
func (r *Ready) Subscribe(fn func(*models.Store)) {
	r.mu.Lock()
	select {
	case <-r.done:
		store, err := r.store, r.err
		r.mu.Unlock()
		if err == nil {
			fn(store)
		}
		return
	default:
	}
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

// Publish fires the notification with store. Only the first Publish or Fail
// has an effect; it reports whether this call fired.
func (r *Ready) Publish(store *models.Store) bool {
	return r.fire(store, nil)
}

// Fail fires the notification with an error. Subscribers are not called.
func (r *Ready) Fail(err error) bool {
	return r.fire(nil, err)
}

func (r *Ready) fire(store *models.Store, err error) bool {
	fired := false
	r.once.Do(func() {
		fired = true
		r.mu.Lock()
		r.store, r.err = store, err
		subs := r.subs
		r.subs = nil
		close(r.done)
		r.mu.Unlock()

		if err != nil {
			return
		}
		for _, fn := range subs {
			fn(store)
		}
	})
	return fired
}

// Done is closed once the notification fired.
func (r *Ready) Done() <-chan struct{} {
	return r.done
}

// Err returns the load error after Fail, nil otherwise.
func (r *Ready) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Store returns the published store, nil before Publish or after Fail.
func (r *Ready) Store() *models.Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store
}
