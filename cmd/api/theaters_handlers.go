package main

import (
	"net/http"

	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/services/selection"
)

func (app *Application) listCinemaSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := app.Services.Theaters.Systems(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"systems": systems}, "")
}

type choiceInput struct {
	ID string `json:"id" schema:"id"`
}

func (app *Application) renderSelection(w http.ResponseWriter, r *http.Request, snap selection.Snapshot) {
	app.Http.Ok(w, r, envelop{"selection": snap}, "")
}

func (app *Application) getSelection(w http.ResponseWriter, r *http.Request) {
	app.renderSelection(w, r, sessionFrom(r).Selection.Snapshot())
}

// chooseSystem starts loading the system's clusters. An empty id clears the
// selection.
func (app *Application) chooseSystem(w http.ResponseWriter, r *http.Request) {
	var input choiceInput
	if !app.readInput(w, r, &input) {
		return
	}
	controller := sessionFrom(r).Selection
	controller.ChooseSystem(r.Context(), input.ID)
	app.renderSelection(w, r, controller.Snapshot())
}

func (app *Application) chooseCluster(w http.ResponseWriter, r *http.Request) {
	var input choiceInput
	if !app.readInput(w, r, &input) {
		return
	}
	controller := sessionFrom(r).Selection
	if err := controller.ChooseCluster(r.Context(), input.ID); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.renderSelection(w, r, controller.Snapshot())
}

func (app *Application) chooseRoom(w http.ResponseWriter, r *http.Request) {
	var input choiceInput
	if !app.readInput(w, r, &input) {
		return
	}
	controller := sessionFrom(r).Selection
	if err := controller.ChooseRoom(input.ID); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.renderSelection(w, r, controller.Snapshot())
}

func (app *Application) retrySelection(w http.ResponseWriter, r *http.Request) {
	controller := sessionFrom(r).Selection
	if err := controller.Retry(r.Context()); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.renderSelection(w, r, controller.Snapshot())
}

func (app *Application) addRoom(w http.ResponseWriter, r *http.Request) {
	clusterID, ok := app.extractStringParam(w, r, "id")
	if !ok {
		return
	}
	var form models.RoomForm
	if !app.readInput(w, r, &form) {
		return
	}
	room, err := app.Services.Theaters.AddRoom(r.Context(), clusterID, form)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "Room \""+room.Name+"\" added")
	app.Http.Created(w, r, envelop{"room": room}, "")
}

func (app *Application) deleteRoom(w http.ResponseWriter, r *http.Request) {
	clusterID, ok := app.extractStringParam(w, r, "id")
	if !ok {
		return
	}
	roomID, ok := app.extractStringParam(w, r, "roomID")
	if !ok {
		return
	}
	if err := app.Services.Theaters.DeleteRoom(r.Context(), clusterID, roomID); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "Room successfully deleted")
}
