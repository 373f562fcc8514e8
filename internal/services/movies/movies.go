package movies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"cineconsole/proj/internal/domain/filters"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/lib/batch"
	"cineconsole/proj/internal/lib/dispatch"
	"cineconsole/proj/internal/lib/envelope"
	"cineconsole/proj/internal/lib/validator"

	"github.com/gabriel-vasile/mimetype"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type MoviesProvider interface {
	ListMoviesPaged(ctx context.Context, group string, page, pageSize int) ([]byte, error)
	ListMovies(ctx context.Context, group string) ([]byte, error)
	GetMovie(ctx context.Context, id int) ([]byte, error)
	ListBanners(ctx context.Context) ([]byte, error)
	CreateMovieWithImage(ctx context.Context, form models.MovieForm, image *models.Image) ([]byte, error)
	CreateMovieByQuery(ctx context.Context, form models.MovieForm) ([]byte, error)
	CreateMovieJSON(ctx context.Context, form models.MovieForm) ([]byte, error)
	UpdateMovie(ctx context.Context, form models.MovieForm, image *models.Image) ([]byte, error)
	DeleteMovie(ctx context.Context, id int) ([]byte, error)
	DeleteMovieShort(ctx context.Context, id int) ([]byte, error)
}

// scanPageSize is the page size used when the full catalog has to be
// assembled from the paged listing.
const scanPageSize = 100

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

type MovieService struct {
	log       *slog.Logger
	provider  MoviesProvider
	validator *govalidator.Validate
	groupCode string
}

func New(log *slog.Logger, provider MoviesProvider, validator *govalidator.Validate, groupCode string) *MovieService {
	return &MovieService{
		log:       log,
		provider:  provider,
		validator: validator,
		groupCode: groupCode,
	}
}

type page struct {
	movies []models.Movie
	total  int
}

// List returns one catalog page. A non-empty query switches to a client-side
// fuzzy search over the whole catalog.
func (s *MovieService) List(ctx context.Context, f filters.Filters) ([]models.Movie, filters.Metadata, error) {
	const op = "movies.MovieService.List"
	f = f.WithDefaults()
	log := s.log.With("op", op, "page", f.Page, "page_size", f.PageSize, "q", f.Query)
	if f.Query != "" {
		all, err := s.ListAll(ctx)
		if err != nil {
			return nil, filters.Metadata{}, err
		}
		found := Search(all, f.Query)
		return paginate(found, f), filters.CalculateMetadata(len(found), f), nil
	}
	res, err := dispatch.Run(ctx, log, op,
		dispatch.New("paged listing", func(ctx context.Context) (page, error) {
			raw, err := s.provider.ListMoviesPaged(ctx, s.groupCode, f.Page, f.PageSize)
			if err != nil {
				return page{}, err
			}
			items, total := envelope.Page(raw)
			movies, err := envelope.DecodeItems[models.Movie](items)
			return page{movies: movies, total: total}, err
		}),
		dispatch.New("full listing", func(ctx context.Context) (page, error) {
			all, err := s.listUnpaged(ctx)
			if err != nil {
				return page{}, err
			}
			return page{movies: paginate(all, f), total: len(all)}, nil
		}),
	)
	if err != nil {
		log.Error(err.Error())
		return nil, filters.Metadata{}, fmt.Errorf("%s: %w", op, err)
	}
	return res.movies, filters.CalculateMetadata(res.total, f), nil
}

// ListAll returns the whole catalog of the configured group.
func (s *MovieService) ListAll(ctx context.Context) ([]models.Movie, error) {
	const op = "movies.MovieService.ListAll"
	log := s.log.With("op", op)
	movies, err := dispatch.Run(ctx, log, op,
		dispatch.New("full listing", s.listUnpaged),
		dispatch.New("paged scan", s.scanPaged),
	)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return movies, nil
}

func (s *MovieService) listUnpaged(ctx context.Context) ([]models.Movie, error) {
	raw, err := s.provider.ListMovies(ctx, s.groupCode)
	if err != nil {
		return nil, err
	}
	return envelope.DecodeList[models.Movie](raw)
}

func (s *MovieService) scanPaged(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	for p := 1; ; p++ {
		raw, err := s.provider.ListMoviesPaged(ctx, s.groupCode, p, scanPageSize)
		if err != nil {
			return nil, err
		}
		items, total := envelope.Page(raw)
		chunk, err := envelope.DecodeItems[models.Movie](items)
		if err != nil {
			return nil, err
		}
		movies = append(movies, chunk...)
		if len(chunk) < scanPageSize || len(movies) >= total {
			return movies, nil
		}
	}
}

func (s *MovieService) Get(ctx context.Context, id int) (*models.Movie, error) {
	const op = "movies.MovieService.Get"
	log := s.log.With("op", op, "id", id)
	movie, err := dispatch.Run(ctx, log, op,
		dispatch.New("movie detail", func(ctx context.Context) (models.Movie, error) {
			raw, err := s.provider.GetMovie(ctx, id)
			if err != nil {
				return models.Movie{}, err
			}
			return envelope.DecodeRecord[models.Movie](raw)
		}),
		dispatch.New("catalog scan", func(ctx context.Context) (models.Movie, error) {
			all, err := s.listUnpaged(ctx)
			if err != nil {
				return models.Movie{}, err
			}
			for _, m := range all {
				if m.ID == id {
					return m, nil
				}
			}
			return models.Movie{}, apperr.ErrNotFound
		}),
	)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &movie, nil
}

// NameAvailable reports whether no movie other than excludeID carries name,
// compared case-insensitively.
func (s *MovieService) NameAvailable(ctx context.Context, name string, excludeID int) (bool, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return false, err
	}
	name = strings.TrimSpace(name)
	for _, m := range all {
		if m.ID != excludeID && strings.EqualFold(strings.TrimSpace(m.Title), name) {
			return false, nil
		}
	}
	return true, nil
}

func (s *MovieService) validate(form models.MovieForm, image *models.Image) error {
	errs := validator.ValidateStruct(s.validator, form)
	if errs == nil {
		errs = make(map[string]string)
	}
	if form.ReleaseDate.IsZero() {
		errs["ngayKhoiChieu"] = "This field is required"
	}
	if image != nil && !mimetype.EqualsAny(mimetype.Detect(image.Content).String(), allowedImageTypes...) {
		errs["hinhAnh"] = "Image must be a JPG, PNG or GIF file"
	}
	if len(errs) > 0 {
		return &apperr.ValidationError{Fields: errs}
	}
	return nil
}

func (s *MovieService) checkName(ctx context.Context, log *slog.Logger, form models.MovieForm) error {
	available, err := s.NameAvailable(ctx, form.Title, form.ID)
	if err != nil {
		// The backend remains the authority on duplicates.
		log.Warn("name availability check skipped", "errMsg", err.Error())
		return nil
	}
	if !available {
		log.Info("movie already exists")
		return ErrMovieAlreadyExists
	}
	return nil
}

// Create submits a new movie, trying the multipart upload first and the
// query-parameter and JSON shapes after it.
func (s *MovieService) Create(ctx context.Context, form models.MovieForm, image *models.Image) (*models.Movie, error) {
	const op = "movies.MovieService.Create"
	if form.GroupCode == "" {
		form.GroupCode = s.groupCode
	}
	form.ID = 0
	log := s.log.With("op", op, "title", form.Title)
	if err := s.validate(form, image); err != nil {
		log.Info("invalid movie form", "errMsg", err.Error())
		return nil, err
	}
	if err := s.checkName(ctx, log, form); err != nil {
		return nil, err
	}
	raw, err := dispatch.Run(ctx, log, op,
		dispatch.New("multipart upload", func(ctx context.Context) ([]byte, error) {
			return s.provider.CreateMovieWithImage(ctx, form, image)
		}),
		dispatch.New("query parameters", func(ctx context.Context) ([]byte, error) {
			return s.provider.CreateMovieByQuery(ctx, form)
		}),
		dispatch.New("json body", func(ctx context.Context) ([]byte, error) {
			return s.provider.CreateMovieJSON(ctx, form)
		}),
	)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return movieFrom(raw, form), nil
}

func (s *MovieService) Update(ctx context.Context, form models.MovieForm, image *models.Image) (*models.Movie, error) {
	const op = "movies.MovieService.Update"
	if form.GroupCode == "" {
		form.GroupCode = s.groupCode
	}
	log := s.log.With("op", op, "id", form.ID, "title", form.Title)
	if form.ID <= 0 {
		return nil, apperr.NewValidationError("maPhim", "Value should be greater than 0")
	}
	if err := s.validate(form, image); err != nil {
		log.Info("invalid movie form", "errMsg", err.Error())
		return nil, err
	}
	if err := s.checkName(ctx, log, form); err != nil {
		return nil, err
	}
	raw, err := s.provider.UpdateMovie(ctx, form, image)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return movieFrom(raw, form), nil
}

func (s *MovieService) Delete(ctx context.Context, id int) error {
	const op = "movies.MovieService.Delete"
	log := s.log.With("op", op, "id", id)
	_, err := dispatch.Run(ctx, log, op,
		dispatch.New("XoaPhim", func(ctx context.Context) ([]byte, error) {
			return s.provider.DeleteMovie(ctx, id)
		}),
		dispatch.New("XP", func(ctx context.Context) ([]byte, error) {
			return s.provider.DeleteMovieShort(ctx, id)
		}),
	)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("movie not found")
			return ErrMovieNotFound
		}
		log.Error(err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// BulkDelete deletes every movie in ids, one at a time, and reports each outcome.
func (s *MovieService) BulkDelete(ctx context.Context, ids []int) batch.Result {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = strconv.Itoa(id)
	}
	return batch.Apply(ctx, keys, func(ctx context.Context, key string) error {
		id, _ := strconv.Atoi(key)
		return s.Delete(ctx, id)
	})
}

func (s *MovieService) Banners(ctx context.Context) ([]models.Banner, error) {
	const op = "movies.MovieService.Banners"
	log := s.log.With("op", op)
	raw, err := s.provider.ListBanners(ctx)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return envelope.DecodeList[models.Banner](raw)
}

// Search ranks movies whose title fuzzily matches query, best match first.
func Search(movies []models.Movie, query string) []models.Movie {
	titles := make([]string, len(movies))
	for i, m := range movies {
		titles[i] = m.Title
	}
	ranks := fuzzy.RankFindNormalizedFold(strings.TrimSpace(query), titles)
	sort.Stable(ranks)
	found := make([]models.Movie, 0, len(ranks))
	for _, r := range ranks {
		found = append(found, movies[r.OriginalIndex])
	}
	return found
}

func paginate(movies []models.Movie, f filters.Filters) []models.Movie {
	offset := f.Offset()
	if offset >= len(movies) {
		return []models.Movie{}
	}
	end := min(offset+f.PageSize, len(movies))
	return movies[offset:end]
}

// movieFrom decodes the movie echoed by a write endpoint. Endpoints that echo
// nothing usable give the submitted form back.
func movieFrom(raw []byte, form models.MovieForm) *models.Movie {
	if m, err := envelope.DecodeRecord[models.Movie](raw); err == nil && m.Title != "" {
		return &m
	}
	return &models.Movie{
		ID:          form.ID,
		Title:       form.Title,
		Trailer:     form.Trailer,
		Description: form.Description,
		GroupCode:   form.GroupCode,
		ReleaseDate: form.ReleaseDate,
		Rating:      float64(form.Rating),
		Featured:    form.Featured,
		Showing:     form.Showing,
		Upcoming:    form.Upcoming,
	}
}
