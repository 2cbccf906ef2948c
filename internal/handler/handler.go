package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	customError "github.com/segyhp/chama-engine/pkg/errors"
	"github.com/segyhp/chama-engine/pkg/response"
	"github.com/segyhp/chama-engine/pkg/validation"
)

// decodeAndValidate reads a JSON body into dst and runs the validator on it.
// It writes a 400 and returns false when either step fails.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		response.CodedError(w, http.StatusBadRequest, customError.ErrCodeValidation, "Invalid request body", err)
		return false
	}

	if err := v.Struct(dst); err != nil {
		response.CodedError(w, http.StatusBadRequest, customError.ErrCodeValidation, validation.Message(err), nil)
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.CodedError(w, http.StatusBadRequest, customError.ErrCodeValidation, fmt.Sprintf("Invalid %s %q", name, raw), nil)
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps a service error onto a status code by its kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		response.LoggerFromContext(r.Context()).Error("Unhandled error", slog.String("error", err.Error()))
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	switch {
	case errors.Is(err, customError.ErrValidation):
		response.CodedError(w, http.StatusBadRequest, be.Code, be.Message, nil)
	case errors.Is(err, customError.ErrNotFound):
		response.CodedError(w, http.StatusNotFound, be.Code, be.Message, nil)
	case errors.Is(err, customError.ErrConflict):
		response.CodedError(w, http.StatusConflict, be.Code, be.Message, nil)
	default:
		// Storage details stay in the log.
		response.LoggerFromContext(r.Context()).Error("Request failed",
			slog.String("code", be.Code),
			slog.String("error", err.Error()),
		)
		response.CodedError(w, http.StatusInternalServerError, be.Code, be.Message, nil)
	}
}
