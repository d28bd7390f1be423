package uploadsvc

import (
	"context"
	"fmt"
	"io"

	"github.com/sir_venger/upload_lite/internal/models"
)

// Ingest принимает одну часть файла. Части приходят в любом порядке и могут
// дублироваться: повторная доставка того же offset перезаписывает файл части.
// Доставка, после которой набран весь заявленный объём, запускает сборку —
// ровно один раз на сессию, что гарантирует CAS pending→assembling в хранилище.
func (s *Uploads) Ingest(ctx context.Context, id string, offset, length int64, payload io.Reader) (models.IngestResult, error) {
	session, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return models.IngestResult{}, err
	}
	if session.Status != models.StatusPending {
		return models.IngestResult{}, fmt.Errorf("%w: session is %s", models.ErrInvalidState, session.Status)
	}

	if offset < 0 || length <= 0 {
		return models.IngestResult{}, fmt.Errorf("%w: offset %d length %d", models.ErrOutOfRange, offset, length)
	}
	if offset+length > session.DeclaredSize {
		return models.IngestResult{}, fmt.Errorf("%w: [%d, %d) exceeds declared size %d",
			models.ErrOutOfRange, offset, offset+length, session.DeclaredSize)
	}

	n, err := s.Staging.WriteChunk(session.StorageName, offset, io.LimitReader(payload, length))
	if err != nil {
		// Каталог мог исчезнуть между Get и записью, если сессию
		// параллельно собрали или удалили.
		if current, getErr := s.Sessions.Get(ctx, id); getErr == nil && current.Status != models.StatusPending {
			return models.IngestResult{}, fmt.Errorf("%w: session is %s", models.ErrInvalidState, current.Status)
		}
		return models.IngestResult{}, fmt.Errorf("write chunk at %d: %w", offset, err)
	}
	if n != length {
		return models.IngestResult{}, fmt.Errorf("unexpected chunk length: want %d, got %d", length, n)
	}

	// Накопленная отметка — сумма уникальных staged-частей: повторная
	// доставка по тому же offset счётчик не двигает. Смежность здесь не
	// проверяется, это работа движка сборки.
	received, err := s.stagedBytes(session.StorageName)
	if err != nil {
		// Победившая параллельная сборка могла уже разобрать каталог.
		// Сама запись удалась, а сборка стартует только с полным набором
		// байтов — для клиента это успех, не ошибка.
		if current, getErr := s.Sessions.Get(ctx, id); getErr == nil {
			switch current.Status {
			case models.StatusAssembling, models.StatusCompleted:
				return models.IngestResult{ReceivedThrough: session.DeclaredSize}, nil
			case models.StatusFailed:
				return models.IngestResult{}, fmt.Errorf("%w: session is %s", models.ErrInvalidState, current.Status)
			}
		}
		return models.IngestResult{}, fmt.Errorf("track received bytes: %w", err)
	}

	result := models.IngestResult{ReceivedThrough: received}
	if received < session.DeclaredSize {
		return result, nil
	}

	// Условие завершения выполнено. Побеждает один вызов; проигравшие
	// возвращают успех своей записи, не трогая сборку повторно.
	won, err := s.Sessions.CompareAndSwapStatus(ctx, id, models.StatusPending, models.StatusAssembling)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("enter assembling: %w", err)
	}
	if !won {
		return result, nil
	}

	if err := s.assemble(ctx, session); err != nil {
		return models.IngestResult{}, err
	}

	return result, nil
}

func (s *Uploads) stagedBytes(storageName string) (int64, error) {
	chunks, err := s.Staging.Chunks(storageName)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, c := range chunks {
		total += c.Size
	}
	return total, nil
}
