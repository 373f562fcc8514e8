package main

import (
	"net/http"
	"strconv"

	"cineconsole/proj/internal/domain/filters"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/validator"
)

func (app *Application) readFilters(w http.ResponseWriter, r *http.Request) (filters.Filters, bool) {
	var f filters.Filters
	if !app.readQuery(w, r, &f) {
		return f, false
	}
	if errs := validator.ValidateStruct(app.validator, f); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return f, false
	}
	return f, true
}

func (app *Application) listMovies(w http.ResponseWriter, r *http.Request) {
	f, ok := app.readFilters(w, r)
	if !ok {
		return
	}
	movies, metadata, err := app.Services.Movies.List(r.Context(), f)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movies": movies, "metadata": metadata}, "")
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	movie, err := app.Services.Movies.Get(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movie": movie}, "")
}

func (app *Application) movieNameAvailable(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Name      string `schema:"name"`
		ExcludeID int    `schema:"exclude_id"`
	}
	if !app.readQuery(w, r, &params) {
		return
	}
	if params.Name == "" {
		app.Http.UnprocessableEntity(w, r, map[string]string{"name": "Name is required"})
		return
	}
	available, err := app.Services.Movies.NameAvailable(r.Context(), params.Name, params.ExcludeID)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"available": available}, "")
}

func (app *Application) readMovieForm(w http.ResponseWriter, r *http.Request) (models.MovieForm, *models.Image, bool) {
	var form models.MovieForm
	if !app.readInput(w, r, &form) {
		return form, nil, false
	}
	image, err := app.readPoster(r)
	if err != nil {
		app.Http.BadRequest(w, r, "unreadable poster upload")
		return form, nil, false
	}
	return form, image, true
}

func (app *Application) createMovie(w http.ResponseWriter, r *http.Request) {
	form, image, ok := app.readMovieForm(w, r)
	if !ok {
		return
	}
	movie, err := app.Services.Movies.Create(r.Context(), form, image)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "Movie \""+movie.Title+"\" created")
	app.Http.Created(w, r, envelop{"movie": movie}, "")
}

func (app *Application) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	form, image, ok := app.readMovieForm(w, r)
	if !ok {
		return
	}
	form.ID = id
	movie, err := app.Services.Movies.Update(r.Context(), form, image)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "Movie \""+movie.Title+"\" updated")
	app.Http.Ok(w, r, envelop{"movie": movie}, "")
}

func (app *Application) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	if err := app.Services.Movies.Delete(r.Context(), id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "Movie "+strconv.Itoa(id)+" deleted")
	app.Http.Ok(w, r, nil, "Movie successfully deleted")
}

func (app *Application) bulkDeleteMovies(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDs []int `json:"ids"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if len(input.IDs) == 0 {
		app.Http.UnprocessableEntity(w, r, map[string]string{"ids": "At least one id is required"})
		return
	}
	result := app.Services.Movies.BulkDelete(r.Context(), input.IDs)
	app.notifyBatch(r, "movie", len(result.Succeeded), len(result.Failed))
	app.Http.Ok(w, r, envelop{"result": result}, "")
}

func (app *Application) listMovieShowtimes(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	showtimes, err := app.Services.Showtimes.ListByMovie(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"showtimes": showtimes}, "")
}

func (app *Application) listBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := app.Services.Movies.Banners(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"banners": banners}, "")
}
