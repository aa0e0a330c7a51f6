package main

import (
	"expvar"
	"net"
	"net/http"
	"strings"

	"github.com/rana-ox/testing-d1/internal/domain/feedback"
	"github.com/rana-ox/testing-d1/internal/errs"
	"github.com/rana-ox/testing-d1/internal/params"
)

const maxBodyBytes = 1_048_576 //1mb

var (
	feedbackCreated  = expvar.NewInt("feedback_created")
	feedbackRejected = expvar.NewMap("feedback_rejected")
)

// for swagger only
type createFeedbackPayload struct {
	PageSlug            string `json:"page_slug" example:"blog-1"`
	Username            string `json:"username" example:"ann"`
	Rating              int    `json:"rating" example:"5"`
	Comment             string `json:"comment" example:"Great post!"`
	TurnstileToken      string `json:"turnstileToken,omitempty"`
	CFTurnstileResponse string `json:"cf-turnstile-response,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorEnvelope struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// listFeedbackHandler godoc
//
//	@Summary		List feedback for a page
//	@Description	Returns up to 100 entries for the page, newest first.
//	@Tags			Feedback
//	@Produce		json
//	@Param			page	query		string	false	"page slug (default index)"
//	@Success		200		{array}		feedback.Entry
//	@Failure		500		{object}	errorEnvelope
//	@Router			/api/feedback [get]
func (app *application) listFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	page := params.PageSlug(r.URL.Query())

	entries, err := app.store.Feedback.List(r.Context(), page)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, entries); err != nil {
		app.logger.Errorw("failed to write response", "error", err.Error())
	}
}

// createFeedbackHandler godoc
//
//	@Summary		Submit feedback for a page
//	@Description	Accepts JSON or form bodies. A Turnstile token is required when verification is configured.
//	@Tags			Feedback
//	@Accept			json,x-www-form-urlencoded
//	@Produce		json
//	@Param			payload	body		createFeedbackPayload	true	"Feedback payload"
//	@Success		200		{object}	okResponse
//	@Failure		400		{object}	errorEnvelope
//	@Failure		415		{object}	errorEnvelope
//	@Failure		500		{object}	errorEnvelope
//	@Failure		502		{object}	errorEnvelope
//	@Router			/api/feedback [post]
func (app *application) createFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.createFeedback(w, r); err != nil {
		feedbackRejected.Add(string(errs.From(err).Kind), 1)
		app.errorResponse(w, r, err)
		return
	}

	feedbackCreated.Add(1)
	if err := writeJSON(w, http.StatusOK, okResponse{OK: true}); err != nil {
		app.logger.Errorw("failed to write response", "error", err.Error())
	}
}

// createFeedback runs the write path: decode, validate, verify, persist.
// Each stage returns a typed error and nothing is retried.
func (app *application) createFeedback(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	fields, err := params.DecodeBody(r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		return err
	}

	draft, err := feedback.Validate(fields)
	if err != nil {
		return err
	}

	if err := app.verifier.Verify(r.Context(), fields, clientIP(r)); err != nil {
		return err
	}

	entry, err := app.store.Feedback.Create(r.Context(), &draft)
	if err != nil {
		return err
	}

	app.logger.Infow("feedback created", "id", entry.ID, "page", entry.PageSlug, "rating", entry.Rating)
	return nil
}

// clientIP prefers the address Cloudflare reports, then the connection's
// remote address (already rewritten by middleware.RealIP when proxied).
func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
