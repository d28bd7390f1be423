package uploadhttp

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sir_venger/upload_lite/pkg/httperrors"
	"github.com/sir_venger/upload_lite/pkg/uploadproto"
)

// putChunk принимает PUT-запросы с телом одной части. Смещение приходит в
// path-параметре, длина — в Content-Length; без известной длины часть не
// принимается.
func (s *Server) putChunk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	offsetStr := chi.URLParam(r, "offset")

	offset, err := strconv.ParseInt(offsetStr, 10, 64)
	if err != nil || offset < 0 {
		http.Error(w, "invalid chunk offset", http.StatusBadRequest)
		return
	}
	if r.ContentLength < 0 {
		http.Error(w, "content length is required", http.StatusLengthRequired)
		return
	}

	res, err := s.Uploads.Ingest(r.Context(), id, offset, r.ContentLength, r.Body)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(uploadproto.HeaderReceivedThrough, strconv.FormatInt(res.ReceivedThrough, 10))
	_ = json.NewEncoder(w).Encode(res)
}
