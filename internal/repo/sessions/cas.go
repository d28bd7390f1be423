package sessions

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sir_venger/upload_lite/internal/models"
)

// CompareAndSwapStatus атомарно переводит статус expected→next. Возвращает
// false, если статус к этому моменту уже другой — так между конкурентными
// финальными частями побеждает ровно одна. Единственный примитив
// синхронизации, на который опирается ядро.
func (s *PGStore) CompareAndSwapStatus(ctx context.Context, id string, expected, next models.Status) (bool, error) {
	if !expected.CanTransition(next) {
		return false, fmt.Errorf("illegal status transition %s→%s", expected, next)
	}

	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(sessionsTable).
		Set("status", string(next)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "status": string(expected)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build cas sql: %w", err)
	}

	tag, err := s.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("exec cas: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Отличаем проигранный CAS от несуществующей сессии.
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}
