package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/annedfinds/storefront-notify/internal/dispatch"
	"github.com/annedfinds/storefront-notify/internal/logger"
)

const maxBodyBytes = 1 << 20

// callableError is the body of a failed callable request.
type callableError struct {
	Status  dispatch.Code `json:"status"`
	Message string        `json:"message"`
}

// respondJSON writes a JSON response with the given status code and data.
// If data is nil, only the status code and Content-Type header are written.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondResult writes a successful callable response: {"result": v}.
func respondResult(w http.ResponseWriter, v interface{}) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"result": v})
}

// respondError writes a callable error response:
// {"error": {"status": code, "message": message}}.
func respondError(w http.ResponseWriter, status int, code dispatch.Code, message string) {
	respondJSON(w, status, map[string]callableError{
		"error": {Status: code, Message: message},
	})
}

// statusFor maps an error code to its HTTP status.
func statusFor(code dispatch.Code) int {
	switch code {
	case dispatch.CodeInvalidArgument:
		return http.StatusBadRequest
	case dispatch.CodeUnauthenticated:
		return http.StatusUnauthorized
	case dispatch.CodePermissionDenied:
		return http.StatusForbidden
	case dispatch.CodeResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondDispatchError maps a dispatcher error onto the callable envelope.
// Unclassified errors are reported as INTERNAL without their detail.
func respondDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	code := dispatch.CodeOf(err)
	message := "internal error"
	var de *dispatch.Error
	if errors.As(err, &de) {
		message = de.Message
	} else {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("unclassified dispatch error")
	}
	respondError(w, statusFor(code), code, message)
}

// decodeCallable reads a callable request body {"data": ...} into dst.
func decodeCallable(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		if errors.Is(err, io.EOF) {
			return dispatch.InvalidArgument("Request body is empty")
		}
		return dispatch.InvalidArgument("Request body is not valid JSON")
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return dispatch.InvalidArgument("Request body must carry a data object")
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		return dispatch.InvalidArgument(fmt.Sprintf("Invalid request data: %v", err))
	}
	return nil
}
