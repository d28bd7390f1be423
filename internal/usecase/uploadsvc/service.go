package uploadsvc

import (
	"context"
	"io"
	"time"

	"github.com/sir_venger/upload_lite/internal/models"
	"github.com/sir_venger/upload_lite/internal/staging"
)

type (
	// SessionStore хранилище метаданных сессий загрузки. CompareAndSwapStatus
	// обязан быть атомарным: на нём держится гарантия единственного запуска сборки.
	SessionStore interface {
		Create(ctx context.Context, session models.UploadSession) error
		Get(ctx context.Context, id string) (models.UploadSession, error)
		List(ctx context.Context) ([]models.UploadSession, error)
		CompareAndSwapStatus(ctx context.Context, id string, expected, next models.Status) (bool, error)
		SetFinalArtifact(ctx context.Context, id, path string) error
		Delete(ctx context.Context, id string) error
	}

	// Service объединяет операции жизненного цикла возобновляемой загрузки.
	Service interface {
		Create(ctx context.Context, meta models.SessionMetadata) (models.UploadSession, error)
		Ingest(ctx context.Context, id string, offset, length int64, payload io.Reader) (models.IngestResult, error)
		Get(ctx context.Context, id string) (models.UploadSession, error)
		List(ctx context.Context) ([]models.UploadSession, error)
		OpenArtifact(ctx context.Context, id string) (models.UploadSession, io.ReadCloser, error)
		Delete(ctx context.Context, id string) error
		GarbageCollect(ctx context.Context, maxAge time.Duration) (int, error)
	}
)

type Deps struct {
	Sessions SessionStore
	Staging  *staging.Area
	// UploadDir — каталог готовых файлов; отделён от staging-корня,
	// чтобы незавершённые данные никогда не были видны под итоговым путём.
	UploadDir string
	// MaxDeclaredSize ограничивает заявленный размер; 0 — без ограничения.
	MaxDeclaredSize int64
}

type Uploads struct {
	Deps
}

// New конструирует сервис загрузки с заданными зависимостями.
func New(deps Deps) *Uploads {
	return &Uploads{Deps: deps}
}

var _ Service = (*Uploads)(nil)
