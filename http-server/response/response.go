package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"estimate-backend/internal/storage"
)

// Timeout bounds every request context handed to the services.
const Timeout = 5 * time.Second

type ErrorResponse struct {
	Error     string `json:"error"`
	Entity    string `json:"entity,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	LineID    int64  `json:"line_id,omitempty"`
	Remaining string `json:"remaining,omitempty"`
}

// Status maps the storage error types to HTTP status codes.
func Status(err error) int {
	var (
		te *storage.InvalidTransitionError
		qe *storage.QuantityExceededError
	)
	switch {
	case errors.Is(err, storage.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &te), errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &qe):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Error writes err as JSON. Unexpected errors are logged and hidden from the
// client.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.With(slog.String("op", op), slog.String("error", err.Error())).Error("request failed")
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: "internal server error"})
		return
	}

	log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("request rejected")

	resp := ErrorResponse{Error: err.Error()}
	var (
		te *storage.InvalidTransitionError
		qe *storage.QuantityExceededError
	)
	if errors.As(err, &te) {
		resp.Entity, resp.From, resp.To = te.Entity, te.From, te.To
	}
	if errors.As(err, &qe) {
		resp.LineID = qe.LineID
		resp.Remaining = qe.Remaining.String()
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// BadRequest reports a malformed request body or parameter.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

// Created writes v with status 201.
func Created(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}

func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}

// ID parses a positive integer URL parameter.
func ID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	return render.DecodeJSON(r.Body, v)
}

// Date is a calendar date in the 2006-01-02 layout.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
