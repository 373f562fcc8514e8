package cinema

import (
	"context"
	"net/url"
	"strconv"

	"cineconsole/proj/internal/domain/models"
)

// The endpoint methods return raw response bodies; callers normalize them
// through the envelope package.

func (c *Client) ListMoviesPaged(ctx context.Context, group string, page, pageSize int) ([]byte, error) {
	return c.get(ctx, "/QuanLyPhim/LayDanhSachPhimPhanTrang", url.Values{
		"maNhom":            {group},
		"soTrang":           {strconv.Itoa(page)},
		"soPhanTuTrenTrang": {strconv.Itoa(pageSize)},
	})
}

func (c *Client) ListMovies(ctx context.Context, group string) ([]byte, error) {
	return c.get(ctx, "/QuanLyPhim/LayDanhSachPhim", url.Values{"maNhom": {group}})
}

func (c *Client) GetMovie(ctx context.Context, id int) ([]byte, error) {
	return c.get(ctx, "/QuanLyPhim/LayThongTinPhim", url.Values{"MaPhim": {strconv.Itoa(id)}})
}

func (c *Client) ListBanners(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/QuanLyPhim/LayDanhSachBanner", nil)
}

func movieValues(form models.MovieForm) []formValue {
	values := []formValue{
		{"tenPhim", form.Title},
		{"trailer", form.Trailer},
		{"moTa", form.Description},
		{"maNhom", form.GroupCode},
		{"ngayKhoiChieu", form.ReleaseDate.Wire()},
		{"danhGia", strconv.Itoa(form.Rating)},
		{"SapChieu", strconv.FormatBool(form.Upcoming)},
		{"DangChieu", strconv.FormatBool(form.Showing)},
		{"Hot", strconv.FormatBool(form.Featured)},
	}
	if form.ID > 0 {
		values = append([]formValue{{"maPhim", strconv.Itoa(form.ID)}}, values...)
	}
	return values
}

// CreateMovieWithImage posts the movie as multipart form data with its poster.
func (c *Client) CreateMovieWithImage(ctx context.Context, form models.MovieForm, image *models.Image) ([]byte, error) {
	var files []File
	if image != nil {
		files = append(files, File{Field: "hinhAnh", Filename: image.Filename, Content: image.Content})
	}
	return c.postMultipart(ctx, "/QuanLyPhim/ThemPhimUploadHinh", nil, movieValues(form), files...)
}

// CreateMovieByQuery sends the movie fields as query parameters with an empty
// placeholder file, the shape the backend documents for image-less creation.
func (c *Client) CreateMovieByQuery(ctx context.Context, form models.MovieForm) ([]byte, error) {
	query := url.Values{}
	for _, v := range movieValues(form) {
		query.Set(v.key, v.value)
	}
	placeholder := File{Field: "file", Filename: "empty.jpg", Content: []byte{}}
	return c.postMultipart(ctx, "/QuanLyPhim", query, nil, placeholder)
}

type movieJSON struct {
	Title       string `json:"tenPhim"`
	Trailer     string `json:"trailer"`
	Description string `json:"moTa"`
	Rating      int    `json:"danhGia"`
	Upcoming    bool   `json:"SapChieu"`
	Showing     bool   `json:"DangChieu"`
	Featured    bool   `json:"Hot"`
	ReleaseDate string `json:"ngayKhoiChieu"`
	GroupCode   string `json:"maNhom"`
}

// CreateMovieJSON posts the movie as a JSON body without an image.
func (c *Client) CreateMovieJSON(ctx context.Context, form models.MovieForm) ([]byte, error) {
	return c.postJSON(ctx, "/QuanLyPhim/ThemPhimUploadHinh", nil, movieJSON{
		Title:       form.Title,
		Trailer:     form.Trailer,
		Description: form.Description,
		Rating:      form.Rating,
		Upcoming:    form.Upcoming,
		Showing:     form.Showing,
		Featured:    form.Featured,
		ReleaseDate: form.ReleaseDate.Wire(),
		GroupCode:   form.GroupCode,
	})
}

func (c *Client) UpdateMovie(ctx context.Context, form models.MovieForm, image *models.Image) ([]byte, error) {
	var files []File
	if image != nil {
		files = append(files, File{Field: "hinhAnh", Filename: image.Filename, Content: image.Content})
	}
	return c.postMultipart(ctx, "/QuanLyPhim/CapNhatPhimUpload", nil, movieValues(form), files...)
}

func (c *Client) DeleteMovie(ctx context.Context, id int) ([]byte, error) {
	return c.delete(ctx, "/QuanLyPhim/XoaPhim", url.Values{"MaPhim": {strconv.Itoa(id)}})
}

// DeleteMovieShort uses the backend's alternate delete route.
func (c *Client) DeleteMovieShort(ctx context.Context, id int) ([]byte, error) {
	return c.delete(ctx, "/QuanLyPhim/XP", url.Values{"MaPhim": {strconv.Itoa(id)}})
}
