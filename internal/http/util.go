package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ctOP-IIITH/backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes the error envelope every failure response uses.
func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

// writeError maps a tagged service error to an HTTP status. Untagged errors
// become an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	switch svcErr.Kind {
	case service.KindNotFound:
		writeDetail(w, http.StatusNotFound, svcErr.Message)
	case service.KindConflict:
		writeDetail(w, http.StatusConflict, svcErr.Message)
	case service.KindValidation:
		writeDetail(w, http.StatusBadRequest, svcErr.Message)
	case service.KindUnauthorized:
		writeDetail(w, http.StatusUnauthorized, svcErr.Message)
	case service.KindRemoteError:
		writeDetail(w, http.StatusBadGateway, svcErr.Message)
	default:
		writeDetail(w, http.StatusInternalServerError, svcErr.Message)
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
