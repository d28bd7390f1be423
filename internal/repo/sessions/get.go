package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/sir_venger/upload_lite/internal/models"
)

var sessionColumns = []string{
	"id",
	"storage_name",
	"file_name",
	"extension",
	"mime_type",
	"declared_size",
	"status",
	"COALESCE(artifact_path, '') AS artifact_path",
	"created_at",
	"updated_at",
}

// Get возвращает сессию по её идентификатору.
func (s *PGStore) Get(ctx context.Context, id string) (models.UploadSession, error) {
	if strings.TrimSpace(id) == "" {
		return models.UploadSession{}, fmt.Errorf("session id is empty")
	}

	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return models.UploadSession{}, fmt.Errorf("build select: %w", err)
	}

	session, err := scanSession(s.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UploadSession{}, models.ErrNotFound
		}
		return models.UploadSession{}, fmt.Errorf("scan session row: %w", err)
	}

	return session, nil
}

// List возвращает метаданные всех известных сессий, свежие первыми.
func (s *PGStore) List(ctx context.Context) ([]models.UploadSession, error) {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(sessionColumns...).
		From(sessionsTable).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []models.UploadSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		out = append(out, session)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.UploadSession, error) {
	var (
		session models.UploadSession
		status  string
	)

	err := row.Scan(
		&session.ID,
		&session.StorageName,
		&session.OriginalName,
		&session.Extension,
		&session.MimeType,
		&session.DeclaredSize,
		&status,
		&session.ArtifactPath,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return models.UploadSession{}, err
	}

	session.Status, err = models.ParseStatus(status)
	if err != nil {
		return models.UploadSession{}, fmt.Errorf("database contains invalid status: %w", err)
	}

	return session, nil
}
