package filesearch

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEvent(t *testing.T, ch <-chan SnapshotEvent) SnapshotEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for refresh")
	}
	return SnapshotEvent{}
}

func TestRefresherDiscardsSupersededBuild(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	stale := &Snapshot{Fingerprint: 1}
	latest := &Snapshot{Fingerprint: 2}

	build := func() (*Snapshot, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return stale, nil
		}
		return latest, nil
	}

	var mu sync.Mutex
	var published []*Snapshot
	publish := func(s *Snapshot) bool {
		mu.Lock()
		published = append(published, s)
		mu.Unlock()
		return true
	}

	r := NewRefresher(build, publish)
	defer r.Close()
	events := r.Subscribe()

	r.Request()
	<-started
	r.Request()
	close(release)

	ev := waitEvent(t, events)
	assert.NoError(t, ev.Err)
	assert.Equal(t, uint64(2), ev.Fingerprint)
	assert.True(t, ev.Changed)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, published, 1)
	assert.Same(t, latest, published[0])
	assert.Equal(t, int32(2), calls.Load())
}

func TestRefresherReportsChanges(t *testing.T) {
	var fp atomic.Uint64
	fp.Store(7)
	build := func() (*Snapshot, error) { return &Snapshot{Fingerprint: fp.Load()}, nil }

	r := NewRefresher(build, func(*Snapshot) bool { return true })
	defer r.Close()
	events := r.Subscribe()

	r.Request()
	assert.True(t, waitEvent(t, events).Changed)

	r.Request()
	assert.False(t, waitEvent(t, events).Changed, "same fingerprint")

	fp.Store(8)
	r.Request()
	assert.True(t, waitEvent(t, events).Changed)
}

func TestRefresherBuildError(t *testing.T) {
	boom := errors.New("boom")
	published := false
	r := NewRefresher(
		func() (*Snapshot, error) { return nil, boom },
		func(*Snapshot) bool {
			published = true
			return true
		},
	)
	events := r.Subscribe()

	r.Request()
	ev := waitEvent(t, events)
	r.Close()

	assert.ErrorIs(t, ev.Err, boom)
	assert.False(t, published)
}

func TestRefresherClose(t *testing.T) {
	r := NewRefresher(func() (*Snapshot, error) { return &Snapshot{}, nil }, func(*Snapshot) bool { return true })
	events := r.Subscribe()
	r.Close()
	r.Close()

	_, ok := <-events
	assert.False(t, ok, "subscriptions are closed")

	late := r.Subscribe()
	_, ok = <-late
	assert.False(t, ok)

	// Requests after Close are ignored.
	r.Request()
}
