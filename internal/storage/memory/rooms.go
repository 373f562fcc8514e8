// Package memory keeps screening rooms registered through the console. The
// cinema backend exposes no room CRUD, so registered rooms live for the
// lifetime of the process.
package memory

import (
	"context"
	"strings"
	"sync"

	"cineconsole/proj/internal/domain/fields"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/storage"

	"github.com/google/uuid"
)

type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string][]models.ScreeningRoom // keyed by cluster id
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string][]models.ScreeningRoom)}
}

// Insert registers room under clusterID. A room without an id gets a generated
// one. Names are unique per cluster, case-insensitively.
func (r *RoomRegistry) Insert(ctx context.Context, clusterID string, room models.ScreeningRoom) (*models.ScreeningRoom, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rooms[clusterID] {
		if strings.EqualFold(existing.Name, room.Name) || (room.ID != "" && existing.ID == room.ID) {
			return nil, storage.ErrConflict
		}
	}
	if room.ID == "" {
		room.ID = fields.FlexString(uuid.NewString())
	}
	room.ClusterID = clusterID
	r.rooms[clusterID] = append(r.rooms[clusterID], room)
	return &room, nil
}

// List returns a copy of the rooms registered under clusterID. An unknown
// cluster gives an empty list.
func (r *RoomRegistry) List(ctx context.Context, clusterID string) ([]models.ScreeningRoom, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]models.ScreeningRoom, len(r.rooms[clusterID]))
	copy(rooms, r.rooms[clusterID])
	return rooms, nil
}

func (r *RoomRegistry) Delete(ctx context.Context, clusterID, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms := r.rooms[clusterID]
	for i, room := range rooms {
		if room.ID.String() == roomID {
			r.rooms[clusterID] = append(rooms[:i:i], rooms[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}
