package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"adapterd/internal/llm"
	"adapterd/internal/serving"
	"adapterd/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServingError maps serving error kinds to HTTP status codes.
func writeServingError(w http.ResponseWriter, err error) {
	switch {
	case serving.IsUnknownAdapter(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case serving.IsDuplicateName(err), serving.IsAdapterInUse(err):
		writeJSONError(w, http.StatusConflict, err.Error())
	case serving.IsIncompatibleAdapter(err):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case serving.IsTooBusy(err):
		IncrementBackpressure("admission_timeout")
		writeJSONError(w, http.StatusTooManyRequests, err.Error())
	case serving.IsLoadFailed(err):
		writeJSONError(w, http.StatusBadGateway, err.Error())
	case serving.IsResourceUnavailable(err), errors.Is(err, llm.ErrRuntimeUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
