package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"pixelforge/internal/apperr"
	"pixelforge/pkg/types"
)

// HTTPError allows errors to carry their own HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	switch apperr.KindOf(err) {
	case apperr.KindModelNotFound:
		return http.StatusNotFound
	case apperr.KindImageDecode, apperr.KindFileRead, apperr.KindUnsupportedFormat:
		return http.StatusBadRequest
	case apperr.KindDownloadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) types.ErrorResponse {
	kind := string(apperr.KindOf(err))
	var he HTTPError
	if errors.As(err, &he) {
		kind = "BadRequest"
		if he.StatusCode() == http.StatusUnsupportedMediaType {
			kind = "UnsupportedMediaType"
		}
	}
	return types.ErrorResponse{Kind: kind, Error: err.Error(), Code: statusFor(err)}
}

// writeError writes a consistent JSON error payload and returns the status.
func writeError(w http.ResponseWriter, err error) int {
	body := errorBody(err)
	countError(body.Kind)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Code)
	_ = json.NewEncoder(w).Encode(body)
	return body.Code
}
