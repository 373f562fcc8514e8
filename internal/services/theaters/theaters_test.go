package theaters

import (
	"context"
	"net/http"
	"testing"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/lib/logger"
	"cineconsole/proj/internal/lib/validator"
	"cineconsole/proj/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	systems  string
	clusters map[string]string
	err      error
}

func (f *fakeProvider) ListCinemaSystems(context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.systems), nil
}

func (f *fakeProvider) ListClusters(_ context.Context, systemID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.clusters[systemID]), nil
}

func newService(p *fakeProvider) (*TheaterService, *memory.RoomRegistry) {
	reg := memory.NewRoomRegistry()
	return New(logger.Discard(), p, reg, validator.New()), reg
}

var backend = &fakeProvider{
	systems: `{"content":[{"maHeThongRap":"BHDStar","tenHeThongRap":"BHD Star Cineplex"},{"maHeThongRap":"CGV","tenHeThongRap":"cgv"}]}`,
	clusters: map[string]string{
		"BHDStar": `{"statusCode":200,"content":[
			{"maCumRap":"bhd-bitexco","tenCumRap":"BHD Bitexco","diaChi":"Q1","danhSachRap":[{"maRap":451,"tenRap":"Rap 1"},{"maRap":"452","tenRap":"Rap 2"}]},
			{"maCumRap":"bhd-vincom","tenCumRap":"BHD Vincom","danhSachRap":[]}
		]}`,
		"S1": `{"statusCode":200,"content":[]}`,
	},
}

func TestSystems(t *testing.T) {
	svc, _ := newService(backend)
	systems, err := svc.Systems(context.Background())
	require.NoError(t, err)
	require.Len(t, systems, 2)
	assert.Equal(t, "BHDStar", systems[0].ID)
}

func TestClusters(t *testing.T) {
	svc, _ := newService(backend)
	t.Run("stamped with system", func(t *testing.T) {
		clusters, err := svc.Clusters(context.Background(), "BHDStar")
		require.NoError(t, err)
		require.Len(t, clusters, 2)
		for _, c := range clusters {
			assert.Equal(t, "BHDStar", c.SystemID)
		}
		assert.Equal(t, "bhd-bitexco", clusters[0].Rooms[0].ClusterID)
		assert.Equal(t, "451", clusters[0].Rooms[0].ID.String())
	})
	t.Run("empty list", func(t *testing.T) {
		clusters, err := svc.Clusters(context.Background(), "S1")
		require.NoError(t, err)
		assert.NotNil(t, clusters)
		assert.Empty(t, clusters)
	})
	t.Run("backend down", func(t *testing.T) {
		down, _ := newService(&fakeProvider{err: &cinema.APIError{StatusCode: http.StatusBadGateway, Body: "bad gateway"}})
		_, err := down.Clusters(context.Background(), "BHDStar")
		var unavailable *apperr.EndpointUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, http.StatusBadGateway, unavailable.Status)
		assert.Equal(t, "bad gateway", unavailable.Body)
	})
}

func TestRooms(t *testing.T) {
	svc, _ := newService(backend)
	ctx := context.Background()
	t.Run("from cluster listing", func(t *testing.T) {
		rooms, err := svc.Rooms(ctx, "BHDStar", "bhd-bitexco")
		require.NoError(t, err)
		assert.Len(t, rooms, 2)
	})
	t.Run("from local registry", func(t *testing.T) {
		_, err := svc.AddRoom(ctx, "bhd-vincom", models.RoomForm{Name: "IMAX 1", SeatCount: 300, Type: models.RoomIMAX})
		require.NoError(t, err)
		rooms, err := svc.Rooms(ctx, "BHDStar", "bhd-vincom")
		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, models.RoomActive, rooms[0].Status)
	})
	t.Run("nothing registered", func(t *testing.T) {
		rooms, err := svc.Rooms(ctx, "S1", "nowhere")
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})
}

func TestAddRoom(t *testing.T) {
	svc, _ := newService(backend)
	ctx := context.Background()
	testCases := []struct {
		name   string
		form   models.RoomForm
		fields []string
	}{
		{"too few seats", models.RoomForm{Name: "A", SeatCount: 19, Type: models.Room2D}, []string{"soGhe"}},
		{"too many seats", models.RoomForm{Name: "A", SeatCount: 501, Type: models.Room2D}, []string{"soGhe"}},
		{"unknown type", models.RoomForm{Name: "A", SeatCount: 100, Type: "5D"}, []string{"loaiPhong"}},
		{"unknown status", models.RoomForm{Name: "A", SeatCount: 100, Type: models.Room3D, Status: "closed"}, []string{"trangThai"}},
		{"missing name", models.RoomForm{SeatCount: 100, Type: models.Room3D}, []string{"tenRap"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddRoom(ctx, "bhd-bitexco", tc.form)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tc.fields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
	t.Run("bounds accepted", func(t *testing.T) {
		_, err := svc.AddRoom(ctx, "bhd-bitexco", models.RoomForm{Name: "Small", SeatCount: 20, Type: models.Room2D})
		require.NoError(t, err)
		_, err = svc.AddRoom(ctx, "bhd-bitexco", models.RoomForm{Name: "Large", SeatCount: 500, Type: models.RoomDolby, Status: models.RoomMaintenance})
		require.NoError(t, err)
	})
	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.AddRoom(ctx, "bhd-bitexco", models.RoomForm{Name: "small", SeatCount: 40, Type: models.Room2D})
		assert.ErrorIs(t, err, ErrRoomAlreadyExists)
	})
}

func TestDeleteRoom(t *testing.T) {
	svc, _ := newService(backend)
	ctx := context.Background()
	room, err := svc.AddRoom(ctx, "c1", models.RoomForm{Name: "A", SeatCount: 50, Type: models.Room4DX})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRoom(ctx, "c1", room.ID.String()))
	assert.ErrorIs(t, svc.DeleteRoom(ctx, "c1", room.ID.String()), ErrRoomNotFound)
}
