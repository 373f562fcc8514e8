package main

import (
	"net/http"

	"cineconsole/proj/internal/domain/models"
)

// createShowtime schedules a showtime in the room picked through the
// session's selection.
func (app *Application) createShowtime(w http.ResponseWriter, r *http.Request) {
	var form models.ShowtimeForm
	if !app.readInput(w, r, &form) {
		return
	}
	snap := sessionFrom(r).Selection.Snapshot()
	showtime, err := app.Services.Showtimes.Create(r.Context(), form, snap)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "Showtime scheduled")
	app.Http.Created(w, r, envelop{"showtime": showtime}, "")
}

func (app *Application) deleteShowtime(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractStringParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.Services.Showtimes.Delete(r.Context(), id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "Showtime "+id+" deleted")
	app.Http.Ok(w, r, nil, "Showtime successfully deleted")
}

type bulkStringInput struct {
	IDs []string `json:"ids"`
}

func (app *Application) readBulkIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var input bulkStringInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return nil, false
	}
	if len(input.IDs) == 0 {
		app.Http.UnprocessableEntity(w, r, map[string]string{"ids": "At least one id is required"})
		return nil, false
	}
	return input.IDs, true
}

func (app *Application) bulkDeleteShowtimes(w http.ResponseWriter, r *http.Request) {
	ids, ok := app.readBulkIDs(w, r)
	if !ok {
		return
	}
	result := app.Services.Showtimes.BulkDelete(r.Context(), ids)
	app.notifyBatch(r, "showtime", len(result.Succeeded), len(result.Failed))
	app.Http.Ok(w, r, envelop{"result": result}, "")
}
