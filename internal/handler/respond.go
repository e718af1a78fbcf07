// Package handler provides the HTTP surface of the report service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crimenet/report-service/internal/apperr"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError renders the error envelope. Application errors keep their
// code and mapped status so clients can tell bad input from missing records.
func respondError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("internal server error")
	}
	respondJSON(w, appErr.HTTPStatus, appErr)
}
