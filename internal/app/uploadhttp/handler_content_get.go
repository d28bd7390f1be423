package uploadhttp

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sir_venger/upload_lite/pkg/httperrors"
)

// getContent отдаёт собранный файл. Пока сессия не completed, содержимого под
// этим путём не существует — клиент получает конфликт, а не усечённый файл.
func (s *Server) getContent(w http.ResponseWriter, r *http.Request) {
	session, rc, err := s.Uploads.OpenArtifact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	defer rc.Close()

	contentType := session.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(session.DeclaredSize, 10))
	if session.OriginalName != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", session.OriginalName))
	}

	if _, err := io.Copy(w, rc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
