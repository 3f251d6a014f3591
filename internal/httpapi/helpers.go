package httpapi

import (
	"bytes"
	"io"
	"net/http"

	"htmx-todos/internal/render"
)

const contentTypeHTML = "text/html; charset=utf-8"

// writeHTML renders into a buffer first so a template failure turns into a
// 500 instead of a half-written fragment.
func (s *Server) writeHTML(w http.ResponseWriter, r *http.Request, status int, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.logger.Error("render failed", "rid", RequestIDFromContext(r.Context()), "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	var buf bytes.Buffer
	if err := render.Error(&buf, msg); err != nil {
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeEmpty answers with an empty body; htmx swaps it in, removing the target.
func writeEmpty(w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
}
