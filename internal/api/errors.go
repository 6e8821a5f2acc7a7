package api

import (
	"encoding/json"
	"net/http"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err onto the response taxonomy: not found is an empty 404, bad requests carry
// their field map, and everything else is a generic 500 whose cause is only logged.
func (app *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se := kerrors.FromError(err)

	switch se.Code {
	case http.StatusNotFound:
		w.WriteHeader(http.StatusNotFound)
	case http.StatusBadRequest:
		if len(se.Metadata) > 0 {
			writeJSON(w, http.StatusBadRequest, se.Metadata)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": se.Message})
	default:
		app.log.WithContext(r.Context()).Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgGeneric})
	}
}

func malformedBody() error {
	return kerrors.BadRequest(reasonMalformed, "malformed request body")
}

func invalidID() error {
	return kerrors.BadRequest(reasonValidation, "invalid video id").WithMetadata(map[string]string{"id": msgNotID})
}
