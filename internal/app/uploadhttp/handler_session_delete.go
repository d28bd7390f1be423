package uploadhttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sir_venger/upload_lite/pkg/httperrors"
)

// deleteSession удаляет сессию, её staging и итоговый файл. Для сессии в
// сборке возвращается конфликт: гонка удаления с движком не поддерживается.
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Uploads.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperrors.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
