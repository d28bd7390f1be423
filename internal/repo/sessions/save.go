package sessions

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sir_venger/upload_lite/internal/models"
)

// Create записывает новую сессию; идентификатор должен быть уникален.
func (s *PGStore) Create(ctx context.Context, session models.UploadSession) error {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert(sessionsTable).
		Columns(
			"id",
			"storage_name",
			"file_name",
			"extension",
			"mime_type",
			"declared_size",
			"status",
			"created_at",
			"updated_at",
		).
		Values(
			session.ID,
			session.StorageName,
			session.OriginalName,
			session.Extension,
			session.MimeType,
			session.DeclaredSize,
			string(session.Status),
			session.CreatedAt,
			session.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert sql: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec insert: %w", err)
	}

	return nil
}

// SetFinalArtifact фиксирует путь собранного файла.
func (s *PGStore) SetFinalArtifact(ctx context.Context, id, path string) error {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(sessionsTable).
		Set("artifact_path", path).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update sql: %w", err)
	}

	tag, err := s.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("exec update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
