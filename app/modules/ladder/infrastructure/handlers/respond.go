package ladderhandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	"github.com/Black-And-White-Club/skill-ladder/app/observability/attr"
)

const maxBodyBytes = 1 << 20

// decodeBody reads an optional JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var invalid *ladderdomain.InvalidInputError
		if errors.As(err, &invalid) {
			return invalid
		}
		return ladderdomain.Invalid("body", "%v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP. Unknown errors are 500s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ladderdomain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ladderdomain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ladderdomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ladderdomain.ErrAlreadyExists), errors.Is(err, ladderdomain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *LadderHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "Request failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}

	resp := errorResponse{Error: err.Error()}
	var invalid *ladderdomain.InvalidInputError
	if errors.As(err, &invalid) {
		resp.Field = invalid.Field
	}
	writeJSON(w, status, resp)
}

// readMissing reports whether a read failed only because the ladder is absent,
// which read endpoints answer with exists:false.
func readMissing(err error) bool {
	return errors.Is(err, ladderdomain.ErrLadderNotFound)
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
