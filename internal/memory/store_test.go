package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/doublets/pkg/links"
)

func TestBasicCRUD(t *testing.T) {
	s := NewStore()
	t.Cleanup(func() { s.Close() })

	created, err := s.Create(100, 200)
	require.NoError(t, err)
	assert.Equal(t, links.Link{ID: 1, Source: 100, Target: 200}, created)

	got, err := s.Read(1)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := s.Update(1, 100, 500)
	require.NoError(t, err)
	assert.Equal(t, links.Link{ID: 1, Source: 100, Target: 500}, updated)

	got, err = s.Read(1)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, s.Delete(1))

	_, err = s.Read(1)
	require.ErrorIs(t, err, links.ErrNotFound)
}

func TestIDsNeverReused(t *testing.T) {
	s := NewStore()
	t.Cleanup(func() { s.Close() })

	first, err := s.Create(1, 2)
	require.NoError(t, err)
	require.NoError(t, s.Delete(first.ID))

	second, err := s.Create(3, 4)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestConcurrentCreateUnique(t *testing.T) {
	s := NewStore()
	t.Cleanup(func() { s.Close() })

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	ids := make(chan links.LinkID, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				l, err := s.Create(0, 0)
				assert.NoError(t, err)
				ids <- l.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[links.LinkID]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestScanCreationOrderSkipsDeleted(t *testing.T) {
	s := NewStore()
	t.Cleanup(func() { s.Close() })

	for i := 0; i < 5; i++ {
		_, err := s.Create(links.LinkID(i), links.LinkID(i))
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(3))

	var order []links.LinkID
	require.NoError(t, s.Scan(func(l links.Link) bool {
		order = append(order, l.ID)
		return true
	}))
	assert.Equal(t, []links.LinkID{1, 2, 4, 5}, order)
}

func TestScanEarlyStop(t *testing.T) {
	s := NewStore()
	t.Cleanup(func() { s.Close() })

	for i := 0; i < 10; i++ {
		_, err := s.Create(0, 0)
		require.NoError(t, err)
	}

	visits := 0
	require.NoError(t, s.Scan(func(links.Link) bool {
		visits++
		return visits < 3
	}))
	assert.Equal(t, 3, visits)
}

func TestClosedStoreUnavailable(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Close())

	_, err := s.Create(1, 2)
	require.ErrorIs(t, err, links.ErrStoreUnavailable)

	_, err = s.Read(1)
	require.ErrorIs(t, err, links.ErrStoreUnavailable)

	err = s.Scan(func(links.Link) bool { return true })
	require.ErrorIs(t, err, links.ErrStoreUnavailable)

	_, err = s.Update(1, 0, 0)
	require.ErrorIs(t, err, links.ErrStoreUnavailable)

	require.ErrorIs(t, s.Delete(1), links.ErrStoreUnavailable)
}

func TestUpdateDeleteMissing(t *testing.T) {
	s := NewStore()
	t.Cleanup(func() { s.Close() })

	_, err := s.Update(42, 0, 0)
	require.ErrorIs(t, err, links.ErrNotFound)
	require.ErrorIs(t, s.Delete(42), links.ErrNotFound)
}

func TestDanglingReferencesAllowed(t *testing.T) {
	s := NewStore()
	t.Cleanup(func() { s.Close() })

	// Source and target need not exist.
	l, err := s.Create(9999, 8888)
	require.NoError(t, err)

	got, err := s.Read(l.ID)
	require.NoError(t, err)
	assert.Equal(t, links.LinkID(9999), got.Source)
	assert.Equal(t, links.LinkID(8888), got.Target)
}
