package uploadhttp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sir_venger/upload_lite/pkg/httperrors"
)

type gcResponse struct {
	Swept int `json:"swept"`
}

// gcOnce вручную запускает сбор брошенных сессий. Порог возраста берётся из
// конфигурации; query-параметр max_age (формат time.ParseDuration) позволяет
// оператору разово его переопределить.
func (s *Server) gcOnce(w http.ResponseWriter, r *http.Request) {
	maxAge := s.Cfg.GCMaxAge()
	if v := r.URL.Query().Get("max_age"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "invalid max_age", http.StatusBadRequest)
			return
		}
		maxAge = d
	}

	n, err := s.Uploads.GarbageCollect(r.Context(), maxAge)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(gcResponse{Swept: n})
}
