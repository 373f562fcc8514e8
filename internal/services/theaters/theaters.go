package theaters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/lib/dispatch"
	"cineconsole/proj/internal/lib/envelope"
	"cineconsole/proj/internal/lib/validator"
	"cineconsole/proj/internal/storage"

	govalidator "github.com/go-playground/validator/v10"
)

type TheatersProvider interface {
	ListCinemaSystems(ctx context.Context) ([]byte, error)
	ListClusters(ctx context.Context, systemID string) ([]byte, error)
}

type RoomsStorage interface {
	Insert(ctx context.Context, clusterID string, room models.ScreeningRoom) (*models.ScreeningRoom, error)
	List(ctx context.Context, clusterID string) ([]models.ScreeningRoom, error)
	Delete(ctx context.Context, clusterID, roomID string) error
}

type TheaterService struct {
	log       *slog.Logger
	provider  TheatersProvider
	rooms     RoomsStorage
	validator *govalidator.Validate
}

func New(log *slog.Logger, provider TheatersProvider, rooms RoomsStorage, validator *govalidator.Validate) *TheaterService {
	return &TheaterService{
		log:       log,
		provider:  provider,
		rooms:     rooms,
		validator: validator,
	}
}

func (s *TheaterService) Systems(ctx context.Context) ([]models.CinemaSystem, error) {
	const op = "theaters.TheaterService.Systems"
	log := s.log.With("op", op)
	raw, err := s.provider.ListCinemaSystems(ctx)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return envelope.DecodeList[models.CinemaSystem](raw)
}

// Clusters returns the clusters of systemID, each stamped with systemID. A
// system without clusters gives an empty list.
func (s *TheaterService) Clusters(ctx context.Context, systemID string) ([]models.CinemaCluster, error) {
	const op = "theaters.TheaterService.Clusters"
	log := s.log.With("op", op, "system", systemID)
	clusters, err := dispatch.Run(ctx, log, op,
		dispatch.New("clusters by system", func(ctx context.Context) ([]models.CinemaCluster, error) {
			return s.fetchClusters(ctx, systemID)
		}),
	)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clusters, nil
}

func (s *TheaterService) fetchClusters(ctx context.Context, systemID string) ([]models.CinemaCluster, error) {
	raw, err := s.provider.ListClusters(ctx, systemID)
	if err != nil {
		return nil, err
	}
	clusters, err := envelope.DecodeList[models.CinemaCluster](raw, "lstCumRap")
	if err != nil {
		return nil, err
	}
	for i := range clusters {
		clusters[i].SystemID = systemID
		for j := range clusters[i].Rooms {
			clusters[i].Rooms[j].ClusterID = clusters[i].ID
		}
	}
	return clusters, nil
}

// Rooms returns the screening rooms of a cluster. The rooms embedded in the
// system's cluster listing come first; the local registry serves clusters the
// backend lists without rooms.
func (s *TheaterService) Rooms(ctx context.Context, systemID, clusterID string) ([]models.ScreeningRoom, error) {
	const op = "theaters.TheaterService.Rooms"
	log := s.log.With("op", op, "system", systemID, "cluster", clusterID)
	rooms, err := dispatch.Run(ctx, log, op,
		dispatch.New("cluster listing", func(ctx context.Context) ([]models.ScreeningRoom, error) {
			clusters, err := s.fetchClusters(ctx, systemID)
			if err != nil {
				return nil, err
			}
			for _, c := range clusters {
				if c.ID == clusterID && len(c.Rooms) > 0 {
					return c.Rooms, nil
				}
			}
			return nil, apperr.ErrNotFound
		}),
		dispatch.New("local registry", func(ctx context.Context) ([]models.ScreeningRoom, error) {
			return s.rooms.List(ctx, clusterID)
		}),
	)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rooms, nil
}

func (s *TheaterService) AddRoom(ctx context.Context, clusterID string, form models.RoomForm) (*models.ScreeningRoom, error) {
	const op = "theaters.TheaterService.AddRoom"
	log := s.log.With("op", op, "cluster", clusterID, "name", form.Name)
	if clusterID == "" {
		return nil, apperr.NewValidationError("maCumRap", "This field is required")
	}
	if err := validator.Validate(s.validator, form); err != nil {
		log.Info("invalid room form", "errMsg", err.Error())
		return nil, err
	}
	if form.Status == "" {
		form.Status = models.RoomActive
	}
	room, err := s.rooms.Insert(ctx, clusterID, models.ScreeningRoom{
		Name:      form.Name,
		SeatCount: form.SeatCount,
		Type:      form.Type,
		Status:    form.Status,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("room already exists")
			return nil, ErrRoomAlreadyExists
		}
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return room, nil
}

func (s *TheaterService) DeleteRoom(ctx context.Context, clusterID, roomID string) error {
	const op = "theaters.TheaterService.DeleteRoom"
	log := s.log.With("op", op, "cluster", clusterID, "room", roomID)
	if err := s.rooms.Delete(ctx, clusterID, roomID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("room not found")
			return ErrRoomNotFound
		}
		log.Error(err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
