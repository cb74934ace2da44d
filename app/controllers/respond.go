package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"inkwell/app/auth"
	"inkwell/app/errs"
	"inkwell/app/middleware"
	"inkwell/app/models"
	"inkwell/app/render"
	"inkwell/app/repositories"
	"inkwell/app/reposync"
	"inkwell/app/services"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Responder writes JSON for API requests and HTML or plain text otherwise.
type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteHTML(w http.ResponseWriter, status int, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(page)); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteError converts err to an ApiErr and writes it in the form the
// request asked for.
func (r Responder) WriteError(w http.ResponseWriter, req *http.Request, err error) {
	apiErr := toApiErr(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Str("path", req.URL.Path).Msg("Request failed")
	}

	if !middleware.IsAPI(req) {
		http.Error(w, apiErr.Error(), apiErr.StatusCode)
		return
	}

	response := map[string]interface{}{
		"error":  apiErr.Message(),
		"status": "error",
	}
	if apiErr.Field != "" {
		response["field"] = apiErr.Field
	}
	if apiErr.Details != "" {
		response["details"] = apiErr.Details
	}
	r.WriteJSON(w, apiErr.StatusCode, response)
}

// toApiErr maps domain errors to HTTP errors. Unknown errors are internal.
func toApiErr(err error) *errs.ApiErr {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var lockout *auth.LockoutError
	var fieldErr *models.FieldError
	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &lockout):
		e := errs.NewTooManyRequestsError("account locked")
		e.Details = lockout.Error()
		return e
	case errors.As(err, &fieldErr):
		return errs.NewValidationError(fieldErr.Field, fieldErr.Message)
	case errors.As(err, &verrs):
		return errs.FromValidation(err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return errs.NewInvalidJSONError(err)
	case errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrFriendLinkNotFound),
		errors.Is(err, render.ErrPostNotFound),
		errors.Is(err, repositories.ErrNotFound):
		return errs.NewNotFoundError(err.Error())
	case errors.Is(err, services.ErrDeclined):
		e := errs.NewBadRequestError("confirmation required")
		e.Details = "repeat the request with confirm=true"
		return e
	case errors.Is(err, services.ErrNotEditing):
		return errs.NewBadRequestError(err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNoSession):
		return errs.NewUnauthorizedError(err.Error())
	case errors.Is(err, auth.ErrEmptyUsername):
		return errs.NewValidationError("username", err.Error())
	case errors.Is(err, auth.ErrWeakPassword):
		return errs.NewValidationError("password", err.Error())
	case errors.Is(err, auth.ErrPasswordMismatch):
		return errs.NewValidationError("confirm", err.Error())
	case errors.Is(err, auth.ErrNotConfigured),
		errors.Is(err, auth.ErrAlreadyConfigured),
		errors.Is(err, reposync.ErrNotConfigured):
		return errs.NewConflictError(err.Error())
	default:
		return errs.NewInternalErrorWithCause("unexpected error", err)
	}
}

// errorText is the message shown on an HTML form for err.
func errorText(err error) string {
	apiErr := toApiErr(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		return "操作失败: " + err.Error()
	}
	if apiErr.Details != "" {
		return apiErr.Details
	}
	return err.Error()
}
