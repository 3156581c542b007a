// Package httpjson is the JSON boundary for all handlers: request body
// decoding and the single place application errors become HTTP responses.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campushub/campushub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// errorBody is the wire shape for every error response.
type errorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error maps err to its HTTP status and JSON body. Typed application
// errors keep their kind's status; mongo.ErrNoDocuments that escaped a
// handler's own translation becomes 404; everything else is a 500 and is
// logged, since unexpected storage/database failures propagate as
// generic server errors.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	if e, ok := apperr.As(err); ok {
		Write(w, e.Status(), errorBody{Code: e.Status(), Message: e.Message, Fields: e.Fields})
		return
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		Write(w, http.StatusNotFound, errorBody{Code: http.StatusNotFound, Message: "not found"})
		return
	}
	if logger != nil {
		logger.Error("internal error", zap.Error(err))
	}
	Write(w, http.StatusInternalServerError, errorBody{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
	})
}

// Decode reads the request body into dst, returning a Validation error
// on malformed JSON.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("malformed JSON body", nil)
	}
	return nil
}
