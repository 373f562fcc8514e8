package showtimes

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/lib/logger"
	"cineconsole/proj/internal/lib/validator"
	"cineconsole/proj/internal/services/selection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	created  []models.ShowtimeRequest
	schedule func() ([]byte, error)
	tickets  func(id string) ([]byte, error)
	deleteFn func(id string) ([]byte, error)
}

func (f *fakeProvider) MovieShowtimes(context.Context, int) ([]byte, error) { return f.schedule() }

func (f *fakeProvider) TicketRoom(_ context.Context, id string) ([]byte, error) { return f.tickets(id) }

func (f *fakeProvider) CreateShowtime(_ context.Context, req models.ShowtimeRequest) ([]byte, error) {
	f.created = append(f.created, req)
	return []byte(`{"statusCode":200,"content":"Thêm lịch chiếu thành công!"}`), nil
}

func (f *fakeProvider) DeleteShowtime(_ context.Context, id string) ([]byte, error) {
	return f.deleteFn(id)
}

var (
	hcm   = time.FixedZone("ICT", 7*3600)
	clock = time.Date(2026, 3, 1, 10, 0, 0, 0, hcm)
)

func newService(p *fakeProvider) *ShowtimeService {
	s := New(logger.Discard(), p, validator.New(), hcm)
	s.now = func() time.Time { return clock }
	return s
}

var resolved = selection.Snapshot{
	State:     selection.StateRoomsLoaded,
	SystemID:  "BHDStar",
	ClusterID: "bhd-bitexco",
	RoomID:    "451",
	Clusters:  []models.CinemaCluster{{ID: "bhd-bitexco", SystemID: "BHDStar"}},
	Rooms:     []models.ScreeningRoom{{ID: "451", Name: "Rap 1"}},
}

func TestCreate(t *testing.T) {
	t.Run("minimum price forwarded", func(t *testing.T) {
		p := &fakeProvider{}
		view, err := newService(p).Create(context.Background(), models.ShowtimeForm{
			MovieID:  1282,
			StartsAt: "2026-03-02T19:30",
			Price:    50000,
		}, resolved)
		require.NoError(t, err)
		require.Len(t, p.created, 1)
		assert.Equal(t, models.ShowtimeRequest{MovieID: 1282, StartsAt: "02/03/2026 19:30:00", RoomID: "451", Price: 50000}, p.created[0])
		assert.Equal(t, "bhd-bitexco", view.ClusterID)
		assert.Contains(t, view.PriceDisplay, "50")
	})
	t.Run("price below minimum", func(t *testing.T) {
		p := &fakeProvider{}
		_, err := newService(p).Create(context.Background(), models.ShowtimeForm{
			MovieID:  1282,
			StartsAt: "2026-03-02T19:30",
			Price:    49999,
		}, resolved)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "giaVe")
		assert.Empty(t, p.created)
	})
	t.Run("not in the future", func(t *testing.T) {
		for _, startsAt := range []string{"2026-03-01T10:00", "2026-02-28T23:59:59"} {
			p := &fakeProvider{}
			_, err := newService(p).Create(context.Background(), models.ShowtimeForm{MovieID: 1, StartsAt: startsAt, Price: 80000}, resolved)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr, startsAt)
			assert.Contains(t, verr.Fields, "ngayChieuGioChieu")
			assert.Empty(t, p.created)
		}
	})
	t.Run("malformed datetime", func(t *testing.T) {
		p := &fakeProvider{}
		_, err := newService(p).Create(context.Background(), models.ShowtimeForm{MovieID: 1, StartsAt: "tomorrow", Price: 80000}, resolved)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields["ngayChieuGioChieu"], "tomorrow")
	})
	t.Run("no room selected", func(t *testing.T) {
		p := &fakeProvider{}
		snap := resolved
		snap.RoomID = ""
		_, err := newService(p).Create(context.Background(), models.ShowtimeForm{MovieID: 1, StartsAt: "2026-03-02T19:30", Price: 80000}, snap)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "maRap")
		assert.NotContains(t, verr.Fields, "maCumRap")
		assert.Empty(t, p.created)
	})
	t.Run("no selection at all", func(t *testing.T) {
		p := &fakeProvider{}
		_, err := newService(p).Create(context.Background(), models.ShowtimeForm{MovieID: 1, StartsAt: "2026-03-02T19:30", Price: 80000}, selection.Snapshot{})
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "maRap")
		assert.Contains(t, verr.Fields, "maCumRap")
	})
}

func TestListByMovie(t *testing.T) {
	t.Run("schedule", func(t *testing.T) {
		p := &fakeProvider{
			schedule: func() ([]byte, error) {
				return []byte(`{"content":{"maPhim":1282,"heThongRapChieu":[{"maHeThongRap":"BHDStar","cumRapChieu":[
					{"maCumRap":"bhd-bitexco","lichChieuPhim":[
						{"maLichChieu":"44251","maRap":"451","tenRap":"Rap 1","ngayChieuGioChieu":"2026-03-02T19:30:00","giaVe":75000,"thoiLuong":120},
						{"maLichChieu":44252,"maRap":451,"ngayChieuGioChieu":"02/03/2026 21:30:00","giaVe":90000}
					]}
				]}]}}`), nil
			},
			tickets: func(string) ([]byte, error) { t.Fatal("fallback must not run"); return nil, nil },
		}
		views, err := newService(p).ListByMovie(context.Background(), 1282)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, "44252", views[1].ID.String())
		assert.Equal(t, "bhd-bitexco", views[0].ClusterID)
		assert.Equal(t, 1282, views[0].MovieID)
		assert.Equal(t, "02/03/2026 19:30:00", views[0].StartsAt.String())
		assert.NotEmpty(t, views[0].PriceDisplay)
	})
	t.Run("falls back", func(t *testing.T) {
		p := &fakeProvider{
			schedule: func() ([]byte, error) { return nil, &cinema.APIError{StatusCode: http.StatusInternalServerError} },
			tickets: func(id string) ([]byte, error) {
				assert.Equal(t, "7", id)
				return []byte(`{"content":[{"maLichChieu":1,"maPhim":7},{"maLichChieu":2,"maPhim":8}]}`), nil
			},
		}
		views, err := newService(p).ListByMovie(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "1", views[0].ID.String())
	})
}

func TestDelete(t *testing.T) {
	p := &fakeProvider{deleteFn: func(id string) ([]byte, error) {
		switch id {
		case "404":
			return nil, &cinema.APIError{StatusCode: http.StatusNotFound}
		case "500":
			return nil, errors.New("boom")
		}
		return []byte(`{}`), nil
	}}
	svc := newService(p)
	assert.NoError(t, svc.Delete(context.Background(), "1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "404"), ErrShowtimeNotFound)

	res := svc.BulkDelete(context.Background(), []string{"1", "404", "500", "2"})
	assert.Equal(t, []string{"1", "2"}, res.Succeeded)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "404", res.Failed[0].ID)
	assert.ErrorIs(t, res.Failed[0].Error, apperr.ErrNotFound)
}

func TestFormatPrice(t *testing.T) {
	assert.Contains(t, FormatPrice(75000), "75")
	assert.NotEqual(t, FormatPrice(75000), FormatPrice(90000))
}
