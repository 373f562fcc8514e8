// Package stats computes the admin dashboard counters from the catalog.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"cineconsole/proj/internal/domain/models"

	"golang.org/x/sync/errgroup"
)

type Stats struct {
	Total         int     `json:"total"`
	Showing       int     `json:"showing"`
	Upcoming      int     `json:"upcoming"`
	Featured      int     `json:"featured"`
	AverageRating float64 `json:"average_rating"`
}

// Aggregate counts movies by status flag. Movies lacking a flag count as
// neither showing nor upcoming. The average rating only covers rated movies
// and is rounded to one decimal.
func Aggregate(movies []models.Movie) Stats {
	var (
		s     Stats
		sum   float64
		rated int
	)
	for _, m := range movies {
		s.Total++
		if m.Showing {
			s.Showing++
		}
		if m.Upcoming {
			s.Upcoming++
		}
		if m.Featured {
			s.Featured++
		}
		if m.Rating > 0 {
			sum += m.Rating
			rated++
		}
	}
	if rated > 0 {
		s.AverageRating = math.Round(sum/float64(rated)*10) / 10
	}
	return s
}

type Catalog interface {
	ListAll(ctx context.Context) ([]models.Movie, error)
	Banners(ctx context.Context) ([]models.Banner, error)
}

type Theaters interface {
	Systems(ctx context.Context) ([]models.CinemaSystem, error)
}

type Dashboard struct {
	Movies   Stats    `json:"movies"`
	Systems  int      `json:"systems"`
	Banners  int      `json:"banners"`
	Degraded []string `json:"degraded,omitempty"` // Panels whose source failed
}

type StatsService struct {
	log      *slog.Logger
	catalog  Catalog
	theaters Theaters
}

func New(log *slog.Logger, catalog Catalog, theaters Theaters) *StatsService {
	return &StatsService{log: log, catalog: catalog, theaters: theaters}
}

// Dashboard loads the catalog and the side panels concurrently. Only a
// catalog failure fails the dashboard.
func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	const op = "stats.StatsService.Dashboard"
	log := s.log.With("op", op)
	var (
		d  Dashboard
		mu sync.Mutex
	)
	degrade := func(panel string, err error) {
		log.Warn("dashboard panel unavailable", "panel", panel, "errMsg", err.Error())
		mu.Lock()
		d.Degraded = append(d.Degraded, panel)
		mu.Unlock()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movies, err := s.catalog.ListAll(gctx)
		if err != nil {
			return err
		}
		d.Movies = Aggregate(movies)
		return nil
	})
	g.Go(func() error {
		systems, err := s.theaters.Systems(gctx)
		if err != nil {
			degrade("systems", err)
			return nil
		}
		d.Systems = len(systems)
		return nil
	})
	g.Go(func() error {
		banners, err := s.catalog.Banners(gctx)
		if err != nil {
			degrade("banners", err)
			return nil
		}
		d.Banners = len(banners)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}
