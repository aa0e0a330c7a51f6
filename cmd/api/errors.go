package main

import (
	"net/http"

	"github.com/rana-ox/testing-d1/internal/errs"
)

// errorResponse is the single place where pipeline errors become HTTP
// responses. Untyped errors are reported as internal failures.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	e := errs.From(err)
	status := e.Kind.Status()

	details := e.Details
	if details == nil && status >= http.StatusInternalServerError && e.Err != nil {
		details = []string{e.Err.Error()}
	}

	if status >= http.StatusInternalServerError {
		app.logger.Errorw("request failed", "kind", e.Kind, "method", r.Method, "path", r.URL.Path, "error", err.Error())
	} else {
		app.logger.Warnw("request rejected", "kind", e.Kind, "method", r.Method, "path", r.URL.Path, "error", err.Error())
	}

	if writeErr := writeJSONError(w, status, e.Kind.Message(), details); writeErr != nil {
		app.logger.Errorw("failed to write error response", "error", writeErr.Error())
	}
}

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, errs.Wrap(errs.KindInternal, err))
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", nil)
}

func (app *application) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST")
	app.errorResponse(w, r, errs.New(errs.KindMethodNotAllowed))
}
