package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/doublets/internal/memory"
	"github.com/linkforge/doublets/pkg/links"
)

// startDaemon serves a fresh memory store on a temp socket and tears it all
// down with the test.
func startDaemon(t *testing.T) string {
	t.Helper()

	socket := filepath.Join(t.TempDir(), DefaultSocketName)
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(store, socket, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
		store.Close()
	})

	// Wait for the socket file to appear.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			return socket
		}
		if time.Now().After(deadline) {
			t.Fatal("daemon socket never appeared")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClientCRUD(t *testing.T) {
	socket := startDaemon(t)

	c, err := Dial(socket)
	require.NoError(t, err)
	defer c.Close()

	created, err := c.Create(links.None, links.None)
	require.NoError(t, err)
	assert.Equal(t, links.LinkID(1), created.ID)

	second, err := c.Create(created.ID, links.None)
	require.NoError(t, err)
	assert.Equal(t, created.ID, second.Source)

	got, err := c.Read(second.ID)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	updated, err := c.Update(second.ID, created.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, links.Link{ID: second.ID, Source: created.ID, Target: created.ID}, updated)

	require.NoError(t, c.Delete(created.ID))
	_, err = c.Read(created.ID)
	require.ErrorIs(t, err, links.ErrNotFound)
}

func TestClientScan(t *testing.T) {
	socket := startDaemon(t)

	c, err := Dial(socket)
	require.NoError(t, err)
	defer c.Close()

	var want []links.Link
	for i := 0; i < 5; i++ {
		l, err := c.Create(links.None, links.None)
		require.NoError(t, err)
		want = append(want, l)
	}

	got, err := links.ReadAll(c)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Break in the visitor stops local delivery.
	var seen int
	err = c.Scan(func(links.Link) bool {
		seen++
		return seen < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestClientErrorKinds(t *testing.T) {
	socket := startDaemon(t)

	c, err := Dial(socket)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Read(42)
	require.ErrorIs(t, err, links.ErrNotFound)

	err = c.Delete(42)
	require.ErrorIs(t, err, links.ErrNotFound)

	_, err = c.Update(42, 0, 0)
	require.ErrorIs(t, err, links.ErrNotFound)
}

func TestClientClose(t *testing.T) {
	socket := startDaemon(t)

	c, err := Dial(socket)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Read(1)
	require.ErrorIs(t, err, links.ErrStoreUnavailable)
	_, err = c.Create(0, 0)
	require.ErrorIs(t, err, links.ErrStoreUnavailable)
}

func TestDialNoDaemon(t *testing.T) {
	socket := filepath.Join(t.TempDir(), DefaultSocketName)
	_, err := Dial(socket)
	require.ErrorIs(t, err, links.ErrStoreUnavailable)
}

func TestConcurrentClients(t *testing.T) {
	socket := startDaemon(t)

	const clients = 4
	const perClient = 50

	var wg sync.WaitGroup
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := Dial(socket)
			if err != nil {
				errs <- err
				return
			}
			defer c.Close()
			for j := 0; j < perClient; j++ {
				if _, err := c.Create(links.None, links.None); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	c, err := Dial(socket)
	require.NoError(t, err)
	defer c.Close()

	all, err := links.ReadAll(c)
	require.NoError(t, err)
	require.Len(t, all, clients*perClient)

	ids := make(map[links.LinkID]bool, len(all))
	for _, l := range all {
		require.False(t, ids[l.ID], "id %d assigned twice", l.ID)
		ids[l.ID] = true
	}
}

func TestShutdownWithIdleClient(t *testing.T) {
	socket := filepath.Join(t.TempDir(), DefaultSocketName)
	store := memory.NewStore()
	defer store.Close()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(store, socket, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		require.False(t, time.Now().After(deadline), "socket never appeared")
		time.Sleep(5 * time.Millisecond)
	}

	// A connected client sitting idle keeps its handler blocked reading the
	// next request line; cancellation must still unblock it.
	c, err := Dial(socket)
	require.NoError(t, err)
	defer c.Close()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancellation with an open client connection")
	}
}

func TestServerRemovesSocketOnStop(t *testing.T) {
	socket := filepath.Join(t.TempDir(), DefaultSocketName)
	store := memory.NewStore()
	defer store.Close()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(store, socket, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		require.False(t, time.Now().After(deadline), "socket never appeared")
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	require.NoError(t, <-done)

	_, err := os.Stat(socket)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestErrorKindMapping(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{err: links.ErrNotFound, kind: KindNotFound},
		{err: links.ErrInvalidArgument, kind: KindInvalidArgument},
		{err: links.ErrStoreUnavailable, kind: KindUnavailable},
		{err: errors.New("disk on fire"), kind: KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, kindOf(tt.err))
	}

	require.ErrorIs(t, errOf(KindNotFound, "x"), links.ErrNotFound)
	require.ErrorIs(t, errOf(KindInvalidArgument, "x"), links.ErrInvalidArgument)
	require.ErrorIs(t, errOf(KindUnavailable, "x"), links.ErrStoreUnavailable)
	assert.EqualError(t, errOf(KindInternal, "boom"), "boom")
}
