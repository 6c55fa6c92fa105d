package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/architected-by-miguel/sitecms/content"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 16 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeJSON reads at most limit bytes of JSON from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(r.Body).Decode(v)
}

// mapError writes the response for an error from the content pipeline.
// Validation errors are the caller's fault; everything else, including
// missing configuration and upstream rejections, is reported as a server
// error with its message.
func mapError(w http.ResponseWriter, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
