package main

import (
	"net/http"

	"cineconsole/proj/internal/domain/models"
)

func (app *Application) listUserTypes(w http.ResponseWriter, r *http.Request) {
	types, err := app.Services.Users.Types(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user_types": types}, "")
}

func (app *Application) listUsers(w http.ResponseWriter, r *http.Request) {
	f, ok := app.readFilters(w, r)
	if !ok {
		return
	}
	users, metadata, err := app.Services.Users.List(r.Context(), f)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"users": users, "metadata": metadata}, "")
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	account, ok := app.extractStringParam(w, r, "account")
	if !ok {
		return
	}
	user, err := app.Services.Users.Get(r.Context(), account)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) createUser(w http.ResponseWriter, r *http.Request) {
	var form models.UserForm
	if !app.readInput(w, r, &form) {
		return
	}
	user, err := app.Services.Users.Create(r.Context(), form)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "User "+user.Account+" created")
	app.Http.Created(w, r, envelop{"user": user}, "")
}

func (app *Application) updateUser(w http.ResponseWriter, r *http.Request) {
	account, ok := app.extractStringParam(w, r, "account")
	if !ok {
		return
	}
	var form models.UserForm
	if !app.readInput(w, r, &form) {
		return
	}
	user, err := app.Services.Users.Update(r.Context(), account, form)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "User "+user.Account+" updated")
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	account, ok := app.extractStringParam(w, r, "account")
	if !ok {
		return
	}
	if err := app.Services.Users.Delete(r.Context(), account); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.notifySuccess(r, "User "+account+" deleted")
	app.Http.Ok(w, r, nil, "User successfully deleted")
}

func (app *Application) bulkDeleteUsers(w http.ResponseWriter, r *http.Request) {
	accounts, ok := app.readBulkIDs(w, r)
	if !ok {
		return
	}
	result := app.Services.Users.BulkDelete(r.Context(), accounts)
	app.notifyBatch(r, "user", len(result.Succeeded), len(result.Failed))
	app.Http.Ok(w, r, envelop{"result": result}, "")
}
