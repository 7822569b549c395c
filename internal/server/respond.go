package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	pkgerrors "github.com/chatglass/chatglass/pkg/errors"
)

// errorEnvelope is the JSON shape of every error response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
}

// writeJSON writes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// writeError maps err's code to an HTTP status and writes the JSON
// error envelope. Messages pass through UserMessage so internal detail
// stays in the log rather than the response.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var rl *pkgerrors.RateLimitedError
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
		}
		s.writeJSON(w, http.StatusTooManyRequests, errorEnvelope{
			Error: errorBody{Code: rl.Code(), Message: pkgerrors.UserMessage(err)},
		})
		return
	}

	code := pkgerrors.GetCode(err)
	if code == "" {
		code = pkgerrors.ErrCodeInternal
	}
	s.writeJSON(w, statusFor(code), errorEnvelope{
		Error: errorBody{
			Code:    code,
			Message: pkgerrors.UserMessage(err),
		},
	})
}

// statusFor maps error codes to HTTP statuses. Unknown codes are
// treated as internal errors.
func statusFor(code pkgerrors.Code) int {
	switch code {
	case pkgerrors.ErrCodeInvalidInput,
		pkgerrors.ErrCodeInvalidComponent,
		pkgerrors.ErrCodeInvalidFormat,
		pkgerrors.ErrCodeInvalidConfig,
		pkgerrors.ErrCodeInvalidDocument:
		return http.StatusBadRequest
	case pkgerrors.ErrCodeNotFound,
		pkgerrors.ErrCodeDocumentNotFound,
		pkgerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case pkgerrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case pkgerrors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
