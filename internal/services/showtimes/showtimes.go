package showtimes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"cineconsole/proj/internal/domain/fields"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/lib/batch"
	"cineconsole/proj/internal/lib/dispatch"
	"cineconsole/proj/internal/lib/envelope"
	"cineconsole/proj/internal/lib/validator"
	"cineconsole/proj/internal/services/selection"

	money "github.com/Rhymond/go-money"
	govalidator "github.com/go-playground/validator/v10"
)

type ShowtimesProvider interface {
	MovieShowtimes(ctx context.Context, movieID int) ([]byte, error)
	TicketRoom(ctx context.Context, showtimeID string) ([]byte, error)
	CreateShowtime(ctx context.Context, req models.ShowtimeRequest) ([]byte, error)
	DeleteShowtime(ctx context.Context, showtimeID string) ([]byte, error)
}

// ShowtimeView is a showtime with its price formatted for display.
type ShowtimeView struct {
	models.Showtime
	PriceDisplay string `json:"giaVeHienThi"`
}

func newView(st models.Showtime) ShowtimeView {
	return ShowtimeView{Showtime: st, PriceDisplay: FormatPrice(st.Price)}
}

// FormatPrice renders a ticket price in VND.
func FormatPrice(price int) string {
	return money.New(int64(price), money.VND).Display()
}

type ShowtimeService struct {
	log       *slog.Logger
	provider  ShowtimesProvider
	validator *govalidator.Validate
	loc       *time.Location
	now       func() time.Time
}

func New(log *slog.Logger, provider ShowtimesProvider, validator *govalidator.Validate, loc *time.Location) *ShowtimeService {
	if loc == nil {
		loc = time.Local
	}
	return &ShowtimeService{
		log:       log,
		provider:  provider,
		validator: validator,
		loc:       loc,
		now:       time.Now,
	}
}

// Create validates form against the current selection and submits it. Every
// check runs locally; an invalid form never reaches the backend.
func (s *ShowtimeService) Create(ctx context.Context, form models.ShowtimeForm, snap selection.Snapshot) (*ShowtimeView, error) {
	const op = "showtimes.ShowtimeService.Create"
	log := s.log.With("op", op, "movie", form.MovieID, "starts_at", form.StartsAt, "price", form.Price)

	errs := validator.ValidateStruct(s.validator, form)
	if errs == nil {
		errs = make(map[string]string)
	}
	if _, failed := errs[fields.FieldShowDateTime]; !failed {
		future, err := fields.IsStrictlyFuture(form.StartsAt, s.now().In(s.loc))
		var verr *apperr.ValidationError
		switch {
		case errors.As(err, &verr):
			for k, v := range verr.Fields {
				errs[k] = v
			}
		case !future:
			errs[fields.FieldShowDateTime] = "Showtime must be in the future"
		}
	}
	cluster, ok := snap.Cluster()
	if !ok {
		errs["maCumRap"] = "Select a cinema cluster first"
	}
	room, ok := snap.Room()
	if !ok {
		errs["maRap"] = "Select a screening room first"
	}
	if len(errs) > 0 {
		verr := &apperr.ValidationError{Fields: errs}
		log.Info("invalid showtime", "errMsg", verr.Error())
		return nil, verr
	}

	wire, err := fields.ToWireFormat(form.StartsAt)
	if err != nil {
		return nil, err
	}
	req := models.ShowtimeRequest{
		MovieID:  form.MovieID,
		StartsAt: wire,
		RoomID:   room.ID.String(),
		Price:    form.Price,
	}
	raw, err := s.provider.CreateShowtime(ctx, req)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	startsAt, _ := fields.ParseWire(wire, s.loc)
	created := models.Showtime{
		MovieID:   req.MovieID,
		RoomID:    room.ID,
		RoomName:  room.Name,
		ClusterID: cluster.ID,
		StartsAt:  fields.WireDateTime(startsAt),
		Price:     req.Price,
	}
	if echoed, err := envelope.DecodeRecord[models.Showtime](raw); err == nil && echoed.ID != "" {
		created.ID = echoed.ID
	}
	view := newView(created)
	return &view, nil
}

type movieSchedule struct {
	Systems []struct {
		ID       string `json:"maHeThongRap"`
		Clusters []struct {
			ID        string            `json:"maCumRap"`
			Showtimes []models.Showtime `json:"lichChieuPhim"`
		} `json:"cumRapChieu"`
	} `json:"heThongRapChieu"`
}

// ListByMovie returns every showtime of a movie across systems and clusters.
func (s *ShowtimeService) ListByMovie(ctx context.Context, movieID int) ([]ShowtimeView, error) {
	const op = "showtimes.ShowtimeService.ListByMovie"
	log := s.log.With("op", op, "movie", movieID)
	showtimes, err := dispatch.Run(ctx, log, op,
		dispatch.New("movie schedule", func(ctx context.Context) ([]models.Showtime, error) {
			raw, err := s.provider.MovieShowtimes(ctx, movieID)
			if err != nil {
				return nil, err
			}
			schedule, err := envelope.DecodeRecord[movieSchedule](raw)
			if err != nil {
				return nil, err
			}
			out := []models.Showtime{}
			for _, sys := range schedule.Systems {
				for _, cl := range sys.Clusters {
					for _, st := range cl.Showtimes {
						st.MovieID = movieID
						st.ClusterID = cl.ID
						out = append(out, st)
					}
				}
			}
			return out, nil
		}),
		dispatch.New("ticket room listing", func(ctx context.Context) ([]models.Showtime, error) {
			raw, err := s.provider.TicketRoom(ctx, strconv.Itoa(movieID))
			if err != nil {
				return nil, err
			}
			all, err := envelope.DecodeList[models.Showtime](raw)
			if err != nil {
				return nil, err
			}
			out := []models.Showtime{}
			for _, st := range all {
				if st.MovieID == movieID {
					out = append(out, st)
				}
			}
			return out, nil
		}),
	)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	views := make([]ShowtimeView, len(showtimes))
	for i, st := range showtimes {
		views[i] = newView(st)
	}
	return views, nil
}

func (s *ShowtimeService) Delete(ctx context.Context, showtimeID string) error {
	const op = "showtimes.ShowtimeService.Delete"
	log := s.log.With("op", op, "id", showtimeID)
	if _, err := s.provider.DeleteShowtime(ctx, showtimeID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("showtime not found")
			return ErrShowtimeNotFound
		}
		log.Error(err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *ShowtimeService) BulkDelete(ctx context.Context, ids []string) batch.Result {
	return batch.Apply(ctx, ids, s.Delete)
}
