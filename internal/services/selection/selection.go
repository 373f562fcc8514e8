// Package selection implements the cascading system -> cluster -> room
// selection that the showtime workflow depends on.
//
// Every fetch is tagged with the generation and id of the selection it was
// issued for. A completion whose tag no longer matches the current selection
// is discarded, so the last selection always wins no matter the order in
// which fetches complete.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
)

type State string

const (
	StateIdle          State = "idle"
	StateSystemChosen  State = "system_chosen"
	StateClusterChosen State = "cluster_chosen"
	StateRoomsLoaded   State = "rooms_loaded"
	StateError         State = "error"
)

// Stage names the fetch a failure belongs to.
type Stage string

const (
	StageClusters Stage = "clusters"
	StageRooms    Stage = "rooms"
)

type Fetcher interface {
	Clusters(ctx context.Context, systemID string) ([]models.CinemaCluster, error)
	Rooms(ctx context.Context, systemID, clusterID string) ([]models.ScreeningRoom, error)
}

// TaskExecutor runs fetches off the caller's goroutine. Add reports a task it
// will never run.
type TaskExecutor interface {
	Add(task func()) error
}

type Failure struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Body    string `json:"body,omitempty"`
	Err     error  `json:"-"`
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	State     State                  `json:"state"`
	SystemID  string                 `json:"system_id,omitempty"`
	ClusterID string                 `json:"cluster_id,omitempty"`
	RoomID    string                 `json:"room_id,omitempty"`
	Clusters  []models.CinemaCluster `json:"clusters"`
	Rooms     []models.ScreeningRoom `json:"rooms"`
	Loading   bool                   `json:"loading"`
	Error     *Failure               `json:"error,omitempty"`
}

func (s Snapshot) Cluster() (models.CinemaCluster, bool) {
	for _, c := range s.Clusters {
		if s.ClusterID != "" && c.ID == s.ClusterID {
			return c, true
		}
	}
	return models.CinemaCluster{}, false
}

func (s Snapshot) Room() (models.ScreeningRoom, bool) {
	for _, r := range s.Rooms {
		if s.RoomID != "" && r.ID.String() == s.RoomID {
			return r, true
		}
	}
	return models.ScreeningRoom{}, false
}

type tag struct {
	systemGen  uint64
	clusterGen uint64
	systemID   string
	clusterID  string
}

type Controller struct {
	log     *slog.Logger
	fetcher Fetcher
	exec    TaskExecutor

	mu         sync.Mutex
	systemGen  uint64
	clusterGen uint64
	state      State
	systemID   string
	clusterID  string
	roomID     string
	clusters   []models.CinemaCluster
	rooms      []models.ScreeningRoom
	loading    bool
	// clustersPending is set while a cluster fetch for systemGen is in flight.
	clustersPending bool
	failure         *Failure
}

func New(log *slog.Logger, fetcher Fetcher, exec TaskExecutor) *Controller {
	return &Controller{
		log:      log,
		fetcher:  fetcher,
		exec:     exec,
		state:    StateIdle,
		clusters: []models.CinemaCluster{},
		rooms:    []models.ScreeningRoom{},
	}
}

// ChooseSystem selects systemID from any state, clearing everything below it,
// and fetches its clusters. An empty systemID resets the controller to idle.
func (c *Controller) ChooseSystem(ctx context.Context, systemID string) {
	c.mu.Lock()
	c.systemGen++
	c.clusterGen++
	c.systemID = systemID
	c.clusterID = ""
	c.roomID = ""
	c.clusters = []models.CinemaCluster{}
	c.rooms = []models.ScreeningRoom{}
	c.failure = nil
	if systemID == "" {
		c.state = StateIdle
		c.loading = false
		c.clustersPending = false
		c.mu.Unlock()
		return
	}
	c.state = StateSystemChosen
	c.loading = true
	c.clustersPending = true
	t := c.tag()
	c.mu.Unlock()
	c.issueClusters(ctx, t)
}

// ChooseCluster selects one of the loaded clusters, clearing the room
// selection, and fetches its rooms. An empty clusterID goes back to the
// system's cluster list.
func (c *Controller) ChooseCluster(ctx context.Context, clusterID string) error {
	c.mu.Lock()
	if c.systemID == "" {
		c.mu.Unlock()
		return ErrNoSystemSelected
	}
	if clusterID != "" && !c.hasCluster(clusterID) {
		c.mu.Unlock()
		return ErrUnknownCluster
	}
	c.clusterGen++
	c.clusterID = clusterID
	c.roomID = ""
	c.rooms = []models.ScreeningRoom{}
	if clusterID == "" {
		c.loading = c.clustersPending
		if c.failure != nil && c.failure.Stage == StageRooms {
			c.failure = nil
		}
		if c.failure == nil {
			c.state = StateSystemChosen
		}
		c.mu.Unlock()
		return nil
	}
	c.failure = nil
	c.state = StateClusterChosen
	c.loading = true
	t := c.tag()
	c.mu.Unlock()
	c.issueRooms(ctx, t)
	return nil
}

// ChooseRoom selects one of the loaded rooms. An empty roomID clears it.
func (c *Controller) ChooseRoom(roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRoomsLoaded {
		return ErrRoomsNotLoaded
	}
	if roomID != "" && !c.hasRoom(roomID) {
		return ErrUnknownRoom
	}
	c.roomID = roomID
	return nil
}

// Retry re-issues the fetch that moved the controller into StateError,
// keeping the parent selection.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateError || c.failure == nil {
		c.mu.Unlock()
		return ErrNothingToRetry
	}
	stage := c.failure.Stage
	c.failure = nil
	c.loading = true
	if stage == StageClusters {
		c.systemGen++
		c.clusterGen++
		c.state = StateSystemChosen
		c.clustersPending = true
		t := c.tag()
		c.mu.Unlock()
		c.issueClusters(ctx, t)
		return nil
	}
	c.clusterGen++
	c.state = StateClusterChosen
	t := c.tag()
	c.mu.Unlock()
	c.issueRooms(ctx, t)
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:     c.state,
		SystemID:  c.systemID,
		ClusterID: c.clusterID,
		RoomID:    c.roomID,
		Clusters:  append([]models.CinemaCluster{}, c.clusters...),
		Rooms:     append([]models.ScreeningRoom{}, c.rooms...),
		Loading:   c.loading,
	}
	if c.failure != nil {
		f := *c.failure
		snap.Error = &f
	}
	return snap
}

func (c *Controller) tag() tag {
	return tag{
		systemGen:  c.systemGen,
		clusterGen: c.clusterGen,
		systemID:   c.systemID,
		clusterID:  c.clusterID,
	}
}

func (c *Controller) hasCluster(id string) bool {
	for _, cl := range c.clusters {
		if cl.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) hasRoom(id string) bool {
	for _, r := range c.rooms {
		if r.ID.String() == id {
			return true
		}
	}
	return false
}

// Fetches outlive the request that triggered them but keep its values, such
// as the session access token.
func (c *Controller) issueClusters(ctx context.Context, t tag) {
	ctx = context.WithoutCancel(ctx)
	err := c.exec.Add(func() {
		clusters, err := c.fetcher.Clusters(ctx, t.systemID)
		c.receiveClusters(t, clusters, err)
	})
	if err != nil {
		c.receiveClusters(t, nil, fmt.Errorf("cluster fetch not scheduled: %w", err))
	}
}

func (c *Controller) issueRooms(ctx context.Context, t tag) {
	ctx = context.WithoutCancel(ctx)
	err := c.exec.Add(func() {
		rooms, err := c.fetcher.Rooms(ctx, t.systemID, t.clusterID)
		c.receiveRooms(t, rooms, err)
	})
	if err != nil {
		c.receiveRooms(t, nil, fmt.Errorf("room fetch not scheduled: %w", err))
	}
}

func (c *Controller) receiveClusters(t tag, clusters []models.CinemaCluster, err error) {
	const op = "selection.Controller.receiveClusters"
	c.mu.Lock()
	defer c.mu.Unlock()
	log := c.log.With("op", op, "system", t.systemID)
	if t.systemGen != c.systemGen || t.systemID != c.systemID {
		log.Debug("stale clusters discarded", "current", c.systemID)
		return
	}
	c.loading = false
	c.clustersPending = false
	if err != nil {
		log.Warn("cluster fetch failed", "errMsg", err.Error())
		c.fail(StageClusters, err)
		return
	}
	c.clusters = make([]models.CinemaCluster, len(clusters))
	for i, cl := range clusters {
		cl.SystemID = t.systemID
		c.clusters[i] = cl
	}
	if c.clusterID == "" {
		c.state = StateSystemChosen
	}
}

func (c *Controller) receiveRooms(t tag, rooms []models.ScreeningRoom, err error) {
	const op = "selection.Controller.receiveRooms"
	c.mu.Lock()
	defer c.mu.Unlock()
	log := c.log.With("op", op, "system", t.systemID, "cluster", t.clusterID)
	if t.systemGen != c.systemGen || t.clusterGen != c.clusterGen || t.clusterID != c.clusterID {
		log.Debug("stale rooms discarded", "current", c.clusterID)
		return
	}
	c.loading = false
	if err != nil {
		log.Warn("room fetch failed", "errMsg", err.Error())
		c.fail(StageRooms, err)
		return
	}
	c.rooms = append([]models.ScreeningRoom{}, rooms...)
	c.state = StateRoomsLoaded
}

func (c *Controller) fail(stage Stage, err error) {
	f := &Failure{Stage: stage, Message: err.Error(), Err: err}
	var diag apperr.Diagnostic
	if errors.As(err, &diag) {
		f.Status = diag.HTTPStatus()
		f.Body = diag.HTTPBody()
	}
	c.failure = f
	c.state = StateError
}
