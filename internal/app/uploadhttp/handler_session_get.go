package uploadhttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sir_venger/upload_lite/pkg/httperrors"
)

// getSession отдаёт метаданные сессии вместе с текущим статусом.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.Uploads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(session)
}

// listSessions отдаёт метаданные всех известных сессий без содержимого.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	all, err := s.Uploads.List(r.Context())
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(all)
}
