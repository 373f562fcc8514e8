package cinema

import (
	"context"
	"net/url"
	"strconv"

	"cineconsole/proj/internal/domain/models"
)

func (c *Client) ListCinemaSystems(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/QuanLyRap/LayThongTinHeThongRap", nil)
}

func (c *Client) ListClusters(ctx context.Context, systemID string) ([]byte, error) {
	return c.get(ctx, "/QuanLyRap/LayThongTinCumRapTheoHeThong", url.Values{"maHeThongRap": {systemID}})
}

// MovieShowtimes returns the schedule of one movie grouped by system and cluster.
func (c *Client) MovieShowtimes(ctx context.Context, movieID int) ([]byte, error) {
	return c.get(ctx, "/QuanLyRap/LayThongTinLichChieuPhim", url.Values{"MaPhim": {strconv.Itoa(movieID)}})
}

// TicketRoom returns the seat map of a showtime.
func (c *Client) TicketRoom(ctx context.Context, showtimeID string) ([]byte, error) {
	return c.get(ctx, "/QuanLyDatVe/LayDanhSachPhongVe", url.Values{"MaLichChieu": {showtimeID}})
}

func (c *Client) CreateShowtime(ctx context.Context, req models.ShowtimeRequest) ([]byte, error) {
	return c.postJSON(ctx, "/QuanLyDatVe/TaoLichChieu", nil, req)
}

func (c *Client) DeleteShowtime(ctx context.Context, showtimeID string) ([]byte, error) {
	return c.delete(ctx, "/QuanLyDatVe/XoaLichChieu", url.Values{"MaLichChieu": {showtimeID}})
}
