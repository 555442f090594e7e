package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error":   message,
		"outcome": string(outcomeForStatus(statusCode)),
	})
}

// respondWithAppError maps an engine error to its HTTP status and outcome
func respondWithAppError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		message = "internal server error"
	}

	respondWithJSON(w, status, map[string]string{
		"error":   message,
		"outcome": string(apperrors.OutcomeOf(err)),
	})
}

// respondWithOutcome writes a successful mutation result under key
func respondWithOutcome(w http.ResponseWriter, statusCode int, key string, payload interface{}) {
	respondWithJSON(w, statusCode, map[string]interface{}{
		"outcome": apperrors.OutcomeSuccess,
		key:       payload,
	})
}

func statusForError(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeProviderUnavailable:
		return http.StatusUnprocessableEntity
	case apperrors.ErrorTypeSlotTaken, apperrors.ErrorTypeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// outcomeForStatus names request-decoding failures that never reach the engine.
func outcomeForStatus(statusCode int) apperrors.Outcome {
	switch statusCode {
	case http.StatusBadRequest:
		return apperrors.OutcomeValidationError
	case http.StatusNotFound:
		return apperrors.OutcomeNotFound
	default:
		return apperrors.OutcomeInternalError
	}
}

// RespondJSON writes payload as JSON for routes served outside this package
func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	respondWithJSON(w, statusCode, payload)
}
