package uploadsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sir_venger/upload_lite/internal/models"
	"github.com/sir_venger/upload_lite/internal/staging"
	"github.com/sir_venger/upload_lite/pkg/retry"
)

const (
	// createAttempts ограничивает перебор имён staging-каталога: шторм
	// коллизий превращается в ErrResourceExhausted, а не в вечный цикл.
	createAttempts   = 5
	createRetryDelay = 5 * time.Millisecond
)

// Create регистрирует новую сессию: резервирует staging-каталог со
// storage-безопасным именем и сохраняет запись в статусе pending.
// Бизнес-валидация метаданных — забота внешнего валидатора; здесь
// проверяется только структурная целостность.
func (s *Uploads) Create(ctx context.Context, meta models.SessionMetadata) (models.UploadSession, error) {
	ext := strings.TrimPrefix(strings.TrimSpace(meta.Extension), ".")
	if ext == "" {
		return models.UploadSession{}, fmt.Errorf("%w: extension is empty", models.ErrInvalidMetadata)
	}
	if meta.DeclaredSize <= 0 {
		return models.UploadSession{}, fmt.Errorf("%w: declared size must be > 0", models.ErrInvalidMetadata)
	}
	if s.MaxDeclaredSize > 0 && meta.DeclaredSize > s.MaxDeclaredSize {
		return models.UploadSession{}, fmt.Errorf("%w: declared size exceeds limit %d", models.ErrInvalidMetadata, s.MaxDeclaredSize)
	}

	var storageName string
	err := retry.Do(ctx, createAttempts, createRetryDelay, func() error {
		storageName = newStorageToken()
		return s.Staging.Reserve(storageName)
	}, func(err error) bool {
		return errors.Is(err, staging.ErrNameTaken)
	})
	if err != nil {
		if errors.Is(err, retry.ErrAttemptsExhausted) {
			return models.UploadSession{}, fmt.Errorf("%w: %d name attempts", models.ErrResourceExhausted, createAttempts)
		}
		return models.UploadSession{}, fmt.Errorf("reserve staging dir: %w", err)
	}

	now := time.Now().UTC()
	session := models.UploadSession{
		ID:           uuid.NewString(),
		StorageName:  storageName,
		OriginalName: strings.TrimSpace(meta.OriginalName),
		Extension:    ext,
		MimeType:     strings.TrimSpace(meta.MimeType),
		DeclaredSize: meta.DeclaredSize,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Sessions.Create(ctx, session); err != nil {
		_ = s.Staging.Remove(storageName)
		return models.UploadSession{}, fmt.Errorf("persist session: %w", err)
	}

	return session, nil
}

// newStorageToken выдаёт случайное имя без разделителей — оно же основа
// имени итогового файла, поэтому от пользовательского имени не зависит.
func newStorageToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
