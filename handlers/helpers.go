package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/spikers-tournament/brackets"
	"github.com/Dosada05/spikers-tournament/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// errorResponse writes {"error": {"code": ..., "message": ...}}.
func errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	env := jsonResponse{"error": jsonResponse{"code": code, "message": message}}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	errorResponse(w, r, http.StatusInternalServerError, "internal_error", brackets.UserMessage(err))
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, code, message string) {
	errorResponse(w, r, http.StatusNotFound, code, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, "unauthorized", message)
}

// engineErrorResponse reports an engine error with its stable code and the
// sentence shown to the user.
func engineErrorResponse(w http.ResponseWriter, r *http.Request, status int, err error) {
	errorResponse(w, r, status, brackets.ErrorCode(err), brackets.UserMessage(err))
}

func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrTournamentNotFound):
		notFoundResponse(w, r, "tournament_not_found", "That tournament could not be found.")
	case errors.Is(err, services.ErrSessionNotFound):
		notFoundResponse(w, r, "session_not_found", "That session could not be found.")
	case errors.Is(err, brackets.ErrMatchNotFound):
		engineErrorResponse(w, r, http.StatusNotFound, err)

	case errors.Is(err, services.ErrInvalidTeamMode):
		errorResponse(w, r, http.StatusBadRequest, "invalid_team_mode", err.Error())

	case errors.Is(err, services.ErrSessionNotInProgress):
		errorResponse(w, r, http.StatusConflict, "session_not_in_progress", "Tournaments can only start while the session is in progress.")
	case errors.Is(err, services.ErrConcurrentUpdate):
		errorResponse(w, r, http.StatusConflict, "concurrent_update", "The tournament changed while you were submitting. Reload and try again.")
	case errors.Is(err, brackets.ErrTournamentAlreadyActive),
		errors.Is(err, brackets.ErrNoActiveTournament),
		errors.Is(err, brackets.ErrSeriesAlreadyDecided),
		errors.Is(err, brackets.ErrMatchNotInStage),
		errors.Is(err, brackets.ErrMatchNotReady):
		engineErrorResponse(w, r, http.StatusConflict, err)

	case errors.Is(err, brackets.ErrInvalidScore),
		errors.Is(err, brackets.ErrInsufficientPlayers),
		errors.Is(err, brackets.ErrInsufficientMiddleRange),
		errors.Is(err, brackets.ErrDuplicatePlayer),
		errors.Is(err, brackets.ErrInsufficientTeams):
		engineErrorResponse(w, r, http.StatusUnprocessableEntity, err)

	default:
		serverErrorResponse(w, r, err)
	}
}

func getParamFromURL(r *http.Request, paramName string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, paramName))
	if value == "" {
		return "", fmt.Errorf("missing %s in URL path", paramName)
	}
	return value, nil
}
