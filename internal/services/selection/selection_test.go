package selection

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualExecutor queues tasks until the test runs them, in any order.
// A non-nil reject error refuses every task.
type manualExecutor struct {
	mu     sync.Mutex
	tasks  []func()
	reject error
}

func (m *manualExecutor) Add(task func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reject != nil {
		return m.reject
	}
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *manualExecutor) run(i int) {
	m.mu.Lock()
	task := m.tasks[i]
	m.mu.Unlock()
	task()
}

func (m *manualExecutor) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

type fakeFetcher struct {
	mu          sync.Mutex
	clusters    map[string][]models.CinemaCluster
	rooms       map[string][]models.ScreeningRoom
	clusterErrs map[string]error
	roomErrs    map[string]error
	ctxErrs     []error
}

func (f *fakeFetcher) Clusters(ctx context.Context, systemID string) ([]models.CinemaCluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if err := f.clusterErrs[systemID]; err != nil {
		return nil, err
	}
	return f.clusters[systemID], nil
}

func (f *fakeFetcher) Rooms(ctx context.Context, systemID, clusterID string) ([]models.ScreeningRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.roomErrs[clusterID]; err != nil {
		return nil, err
	}
	return f.rooms[clusterID], nil
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		clusters: map[string][]models.CinemaCluster{
			"A":  {{ID: "a-1", Name: "A one"}, {ID: "a-2", Name: "A two"}},
			"B":  {{ID: "b-1", Name: "B one"}},
			"S1": {},
		},
		rooms: map[string][]models.ScreeningRoom{
			"a-1": {{ID: "1", Name: "Rap 1"}, {ID: "2", Name: "Rap 2"}},
			"a-2": {{ID: "3", Name: "Rap 3"}},
		},
		clusterErrs: map[string]error{},
		roomErrs:    map[string]error{},
	}
}

func newController(f *fakeFetcher) (*Controller, *manualExecutor) {
	exec := &manualExecutor{}
	return New(logger.Discard(), f, exec), exec
}

func clusterIDs(s Snapshot) []string {
	ids := make([]string, 0, len(s.Clusters))
	for _, c := range s.Clusters {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestInitialState(t *testing.T) {
	c, _ := newController(newFetcher())
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.NotNil(t, snap.Clusters)
	assert.NotNil(t, snap.Rooms)
	assert.Nil(t, snap.Error)
}

func TestStaleClustersDiscarded(t *testing.T) {
	c, exec := newController(newFetcher())
	ctx := context.Background()

	c.ChooseSystem(ctx, "A")
	c.ChooseSystem(ctx, "B")
	require.Equal(t, 2, exec.len())

	exec.run(0) // A resolves late
	snap := c.Snapshot()
	assert.Equal(t, "B", snap.SystemID)
	assert.Empty(t, snap.Clusters)
	assert.True(t, snap.Loading)

	exec.run(1)
	snap = c.Snapshot()
	assert.Equal(t, []string{"b-1"}, clusterIDs(snap))
	assert.Equal(t, "B", snap.Clusters[0].SystemID)
	assert.Equal(t, StateSystemChosen, snap.State)
	assert.False(t, snap.Loading)
}

func TestStaleSameSystemDiscarded(t *testing.T) {
	f := newFetcher()
	c, exec := newController(f)
	ctx := context.Background()

	c.ChooseSystem(ctx, "A")
	c.ChooseSystem(ctx, "B")
	c.ChooseSystem(ctx, "A")

	f.mu.Lock()
	f.clusters["A"] = []models.CinemaCluster{{ID: "a-new"}}
	f.mu.Unlock()

	exec.run(2)
	exec.run(1)
	assert.Equal(t, []string{"a-new"}, clusterIDs(c.Snapshot()))

	f.mu.Lock()
	f.clusters["A"] = []models.CinemaCluster{{ID: "a-old"}}
	f.mu.Unlock()
	exec.run(0)
	assert.Equal(t, []string{"a-new"}, clusterIDs(c.Snapshot()))
}

func TestEmptyClusterList(t *testing.T) {
	c, exec := newController(newFetcher())
	c.ChooseSystem(context.Background(), "S1")
	exec.run(0)
	snap := c.Snapshot()
	assert.Equal(t, StateSystemChosen, snap.State)
	assert.NotNil(t, snap.Clusters)
	assert.Empty(t, snap.Clusters)
	assert.Nil(t, snap.Error)
}

func TestChooseCluster(t *testing.T) {
	ctx := context.Background()
	t.Run("without system", func(t *testing.T) {
		c, _ := newController(newFetcher())
		assert.ErrorIs(t, c.ChooseCluster(ctx, "a-1"), ErrNoSystemSelected)
	})
	t.Run("before clusters arrive", func(t *testing.T) {
		c, _ := newController(newFetcher())
		c.ChooseSystem(ctx, "A")
		assert.ErrorIs(t, c.ChooseCluster(ctx, "a-1"), ErrUnknownCluster)
	})
	t.Run("unknown cluster", func(t *testing.T) {
		c, exec := newController(newFetcher())
		c.ChooseSystem(ctx, "A")
		exec.run(0)
		assert.ErrorIs(t, c.ChooseCluster(ctx, "b-1"), ErrUnknownCluster)
	})
	t.Run("loads rooms", func(t *testing.T) {
		c, exec := newController(newFetcher())
		c.ChooseSystem(ctx, "A")
		exec.run(0)
		require.NoError(t, c.ChooseCluster(ctx, "a-1"))
		assert.Equal(t, StateClusterChosen, c.Snapshot().State)
		exec.run(1)
		snap := c.Snapshot()
		assert.Equal(t, StateRoomsLoaded, snap.State)
		assert.Len(t, snap.Rooms, 2)
		cluster, ok := snap.Cluster()
		require.True(t, ok)
		assert.Equal(t, "A", cluster.SystemID)
	})
	t.Run("stale rooms discarded", func(t *testing.T) {
		c, exec := newController(newFetcher())
		c.ChooseSystem(ctx, "A")
		exec.run(0)
		require.NoError(t, c.ChooseCluster(ctx, "a-1"))
		require.NoError(t, c.ChooseCluster(ctx, "a-2"))
		exec.run(1)
		assert.Empty(t, c.Snapshot().Rooms)
		exec.run(2)
		snap := c.Snapshot()
		require.Len(t, snap.Rooms, 1)
		assert.Equal(t, "3", snap.Rooms[0].ID.String())
	})
	t.Run("rooms for abandoned system discarded", func(t *testing.T) {
		c, exec := newController(newFetcher())
		c.ChooseSystem(ctx, "A")
		exec.run(0)
		require.NoError(t, c.ChooseCluster(ctx, "a-1"))
		c.ChooseSystem(ctx, "B")
		exec.run(1)
		snap := c.Snapshot()
		assert.Empty(t, snap.ClusterID)
		assert.Empty(t, snap.Rooms)
		assert.Equal(t, StateSystemChosen, snap.State)
	})
	t.Run("clear cluster", func(t *testing.T) {
		c, exec := newController(newFetcher())
		c.ChooseSystem(ctx, "A")
		exec.run(0)
		require.NoError(t, c.ChooseCluster(ctx, "a-1"))
		require.NoError(t, c.ChooseCluster(ctx, ""))
		exec.run(1)
		snap := c.Snapshot()
		assert.Equal(t, StateSystemChosen, snap.State)
		assert.Empty(t, snap.Rooms)
		assert.Len(t, snap.Clusters, 2)
		assert.False(t, snap.Loading)
	})
}

func TestChooseSystemClearsChildren(t *testing.T) {
	ctx := context.Background()
	c, exec := newController(newFetcher())
	c.ChooseSystem(ctx, "A")
	exec.run(0)
	require.NoError(t, c.ChooseCluster(ctx, "a-1"))
	exec.run(1)
	require.NoError(t, c.ChooseRoom("1"))

	c.ChooseSystem(ctx, "B")
	snap := c.Snapshot()
	assert.Equal(t, "B", snap.SystemID)
	assert.Empty(t, snap.ClusterID)
	assert.Empty(t, snap.RoomID)
	assert.Empty(t, snap.Clusters)
	assert.Empty(t, snap.Rooms)

	c.ChooseSystem(ctx, "")
	snap = c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.Loading)
	assert.Equal(t, 3, exec.len())
}

func TestChooseRoom(t *testing.T) {
	ctx := context.Background()
	c, exec := newController(newFetcher())
	assert.ErrorIs(t, c.ChooseRoom("1"), ErrRoomsNotLoaded)
	c.ChooseSystem(ctx, "A")
	exec.run(0)
	require.NoError(t, c.ChooseCluster(ctx, "a-1"))
	assert.ErrorIs(t, c.ChooseRoom("1"), ErrRoomsNotLoaded)
	exec.run(1)
	assert.ErrorIs(t, c.ChooseRoom("3"), ErrUnknownRoom)
	require.NoError(t, c.ChooseRoom("2"))
	room, ok := c.Snapshot().Room()
	require.True(t, ok)
	assert.Equal(t, "Rap 2", room.Name)
}

func TestFailureAndRetry(t *testing.T) {
	ctx := context.Background()
	t.Run("clusters", func(t *testing.T) {
		f := newFetcher()
		f.clusterErrs["A"] = &cinema.APIError{StatusCode: http.StatusServiceUnavailable, Body: "down"}
		c, exec := newController(f)
		assert.ErrorIs(t, c.Retry(ctx), ErrNothingToRetry)

		c.ChooseSystem(ctx, "A")
		exec.run(0)
		snap := c.Snapshot()
		assert.Equal(t, StateError, snap.State)
		assert.Equal(t, "A", snap.SystemID)
		require.NotNil(t, snap.Error)
		assert.Equal(t, StageClusters, snap.Error.Stage)
		assert.Equal(t, http.StatusServiceUnavailable, snap.Error.Status)
		assert.Equal(t, "down", snap.Error.Body)

		f.mu.Lock()
		delete(f.clusterErrs, "A")
		f.mu.Unlock()
		require.NoError(t, c.Retry(ctx))
		exec.run(1)
		snap = c.Snapshot()
		assert.Equal(t, StateSystemChosen, snap.State)
		assert.Len(t, snap.Clusters, 2)
		assert.Nil(t, snap.Error)
	})
	t.Run("rooms", func(t *testing.T) {
		f := newFetcher()
		f.roomErrs["a-1"] = errors.New("timeout")
		c, exec := newController(f)
		c.ChooseSystem(ctx, "A")
		exec.run(0)
		require.NoError(t, c.ChooseCluster(ctx, "a-1"))
		exec.run(1)
		snap := c.Snapshot()
		assert.Equal(t, StateError, snap.State)
		assert.Equal(t, "a-1", snap.ClusterID)
		assert.Len(t, snap.Clusters, 2)
		assert.Equal(t, StageRooms, snap.Error.Stage)

		f.mu.Lock()
		delete(f.roomErrs, "a-1")
		f.mu.Unlock()
		require.NoError(t, c.Retry(ctx))
		exec.run(2)
		snap = c.Snapshot()
		assert.Equal(t, StateRoomsLoaded, snap.State)
		assert.Len(t, snap.Rooms, 2)
	})
}

func TestBackToClustersWhileFetching(t *testing.T) {
	ctx := context.Background()
	c, exec := newController(newFetcher())
	c.ChooseSystem(ctx, "A")
	require.NoError(t, c.ChooseCluster(ctx, ""))
	snap := c.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, StateSystemChosen, snap.State)

	exec.run(0)
	snap = c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, []string{"a-1", "a-2"}, clusterIDs(snap))

	require.NoError(t, c.ChooseCluster(ctx, "a-1"))
	require.NoError(t, c.ChooseCluster(ctx, ""))
	assert.False(t, c.Snapshot().Loading)
}

func TestFetchRejected(t *testing.T) {
	ctx := context.Background()
	errFull := errors.New("queue is full")
	t.Run("clusters", func(t *testing.T) {
		c, exec := newController(newFetcher())
		exec.reject = errFull
		c.ChooseSystem(ctx, "A")
		snap := c.Snapshot()
		assert.Equal(t, StateError, snap.State)
		assert.False(t, snap.Loading)
		require.NotNil(t, snap.Error)
		assert.Equal(t, StageClusters, snap.Error.Stage)
		assert.Contains(t, snap.Error.Message, "queue is full")

		exec.reject = nil
		require.NoError(t, c.Retry(ctx))
		exec.run(0)
		snap = c.Snapshot()
		assert.Equal(t, StateSystemChosen, snap.State)
		assert.Len(t, snap.Clusters, 2)
	})
	t.Run("rooms", func(t *testing.T) {
		c, exec := newController(newFetcher())
		c.ChooseSystem(ctx, "A")
		exec.run(0)
		exec.reject = errFull
		require.NoError(t, c.ChooseCluster(ctx, "a-1"))
		snap := c.Snapshot()
		assert.Equal(t, StateError, snap.State)
		assert.False(t, snap.Loading)
		require.NotNil(t, snap.Error)
		assert.Equal(t, StageRooms, snap.Error.Stage)
		assert.Len(t, snap.Clusters, 2)
	})
}

func TestFetchOutlivesRequest(t *testing.T) {
	f := newFetcher()
	c, exec := newController(f)
	ctx, cancel := context.WithCancel(context.Background())
	c.ChooseSystem(ctx, "A")
	cancel()
	exec.run(0)
	require.Len(t, f.ctxErrs, 1)
	assert.NoError(t, f.ctxErrs[0])
	assert.Len(t, c.Snapshot().Clusters, 2)
}

func TestSnapshotIsCopy(t *testing.T) {
	c, exec := newController(newFetcher())
	c.ChooseSystem(context.Background(), "A")
	exec.run(0)
	snap := c.Snapshot()
	snap.Clusters[0].Name = "changed"
	assert.Equal(t, "A one", c.Snapshot().Clusters[0].Name)
}
