package uploadhttp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sir_venger/upload_lite/internal/models"
	"github.com/sir_venger/upload_lite/pkg/httperrors"
)

// createSessionRequest — тело запроса на создание сессии. Правила полей
// проверяет validator до того, как метаданные попадут в жизненный цикл.
type createSessionRequest struct {
	FileName  string `json:"file_name" validate:"omitempty,max=255"`
	Extension string `json:"extension" validate:"required,alphanum,max=16"`
	MimeType  string `json:"mime_type" validate:"omitempty,max=128"`
	Size      int64  `json:"size" validate:"required,gt=0"`
}

type createSessionResponse struct {
	UploadID string        `json:"upload_id"`
	Status   models.Status `json:"status"`
}

// createSession валидирует метаданные и регистрирует новую сессию загрузки.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var payload createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.validate.Struct(payload); err != nil {
		httperrors.Write(w, fmt.Errorf("%w: %v", models.ErrInvalidMetadata, err))
		return
	}

	session, err := s.Uploads.Create(r.Context(), models.SessionMetadata{
		OriginalName: payload.FileName,
		Extension:    payload.Extension,
		MimeType:     payload.MimeType,
		DeclaredSize: payload.Size,
	})
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createSessionResponse{
		UploadID: session.ID,
		Status:   session.Status,
	})
}
