package uploadsvc

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sir_venger/upload_lite/internal/models"
)

// Get возвращает метаданные сессии.
func (s *Uploads) Get(ctx context.Context, id string) (models.UploadSession, error) {
	return s.Sessions.Get(ctx, id)
}

// List возвращает метаданные всех известных сессий без содержимого файлов.
func (s *Uploads) List(ctx context.Context) ([]models.UploadSession, error) {
	return s.Sessions.List(ctx)
}

// OpenArtifact открывает собранный файл на чтение. Для незавершённой сессии
// содержимого нет — только текущий статус через Get.
func (s *Uploads) OpenArtifact(ctx context.Context, id string) (models.UploadSession, io.ReadCloser, error) {
	session, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return models.UploadSession{}, nil, err
	}
	if session.Status != models.StatusCompleted {
		return session, nil, fmt.Errorf("%w: session is %s", models.ErrInvalidState, session.Status)
	}

	f, err := os.Open(session.ArtifactPath)
	if err != nil {
		if os.IsNotExist(err) {
			return session, nil, models.ErrNotFound
		}
		return session, nil, fmt.Errorf("open artifact: %w", err)
	}

	return session, f, nil
}

// Delete удаляет итоговый файл (если есть), staging-каталог и запись сессии.
// Во время сборки удаление отклоняется: гонка с движком не поддерживается.
func (s *Uploads) Delete(ctx context.Context, id string) error {
	session, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return err
	}

	// Pending-сессию сперва гасим через CAS. Выигранный переход заставит
	// гонящуюся финальную доставку проиграть свой pending→assembling, так
	// что сборка после снимка статуса стартовать уже не может. Проигрыш
	// означает, что статус успел смениться, — перечитываем.
	if session.Status == models.StatusPending {
		won, err := s.Sessions.CompareAndSwapStatus(ctx, id, models.StatusPending, models.StatusFailed)
		if err != nil {
			return fmt.Errorf("fence session for delete: %w", err)
		}
		if !won {
			if session, err = s.Sessions.Get(ctx, id); err != nil {
				return err
			}
		}
	}
	if session.Status == models.StatusAssembling {
		return models.ErrConflict
	}

	if session.ArtifactPath != "" {
		if err := os.Remove(session.ArtifactPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove artifact: %w", err)
		}
	}
	if err := s.Staging.Remove(session.StorageName); err != nil {
		log.Printf("UPLOAD cleanup: remove staging dir %s: %v", session.StorageName, err)
	}

	return s.Sessions.Delete(ctx, id)
}
