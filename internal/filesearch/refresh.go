package filesearch

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SnapshotEvent is sent to subscribers after a background refresh finishes.
type SnapshotEvent struct {
	Entries     int
	Fingerprint uint64
	Changed     bool // fingerprint differs from the previous background build
	BuiltAt     time.Time
	Err         error
}

// Refresher runs cache rebuilds on a single background goroutine. A request
// made while a build is running supersedes it: the running build's result is
// discarded and the walk starts again.
type Refresher struct {
	build   func() (*Snapshot, error)
	publish func(*Snapshot) bool

	mu        sync.Mutex
	requested uint64
	completed uint64
	lastPrint uint64
	subs      []chan SnapshotEvent
	closed    bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// NewRefresher starts the worker goroutine. Call Close to stop it. publish
// reports false when a newer snapshot is already in place; no event is sent
// then.
func NewRefresher(build func() (*Snapshot, error), publish func(*Snapshot) bool) *Refresher {
	r := &Refresher{
		build:   build,
		publish: publish,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go r.run()
	return r
}

// Request asks for a rebuild. It never blocks.
func (r *Refresher) Request() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.requested++
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Subscribe returns a channel receiving one event per published build. Slow
// subscribers miss events rather than block the worker. The channel is closed
// by Close.
func (r *Refresher) Subscribe() <-chan SnapshotEvent {
	ch := make(chan SnapshotEvent, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		close(ch)
		return ch
	}
	r.subs = append(r.subs, ch)
	return ch
}

// Close stops the worker and waits for it to exit. A build in progress is
// finished but not published.
func (r *Refresher) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.done)
	<-r.stopped

	r.mu.Lock()
	for _, ch := range r.subs {
		close(ch)
	}
	r.subs = nil
	r.mu.Unlock()
}

func (r *Refresher) run() {
	defer close(r.stopped)
	for {
		select {
		case <-r.done:
			return
		case <-r.wake:
		}
		r.drain()
	}
}

// drain builds until the newest request has been served.
func (r *Refresher) drain() {
	for {
		r.mu.Lock()
		gen := r.requested
		pending := gen != r.completed
		r.mu.Unlock()
		if !pending {
			return
		}

		snap, err := r.build()

		select {
		case <-r.done:
			return
		default:
		}

		r.mu.Lock()
		if r.requested != gen {
			r.mu.Unlock()
			log.Debug().Uint64("generation", gen).Msg("filesearch: discarding superseded rebuild")
			continue
		}
		r.completed = gen
		r.mu.Unlock()

		ev := SnapshotEvent{Err: err}
		if err != nil {
			log.Warn().Err(err).Msg("filesearch: background rebuild failed")
		} else {
			if !r.publish(snap) {
				log.Debug().Uint64("generation", gen).Msg("filesearch: newer snapshot already published")
				continue
			}
			ev.Entries = snap.Len()
			ev.Fingerprint = snap.Fingerprint
			ev.BuiltAt = snap.BuiltAt
		}
		r.notify(ev)
	}
}

func (r *Refresher) notify(ev SnapshotEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.Err == nil {
		ev.Changed = ev.Fingerprint != r.lastPrint
		r.lastPrint = ev.Fingerprint
	}
	for _, ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
