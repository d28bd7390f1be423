package uploadsvc

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/sir_venger/upload_lite/internal/models"
	"github.com/sir_venger/upload_lite/internal/staging"
)

const partialSuffix = ".partial"

// assemble собирает итоговый файл из staged-частей. Вызывается ровно один раз
// на сессию (это обеспечил CAS в Ingest), сессия уже в статусе assembling.
//
// Итог пишется во временный файл и атомарно переименовывается: читатель
// никогда не увидит усечённый артефакт под итоговым путём. Каждая часть
// удаляется сразу после копирования, так что пиковый расход диска ограничен
// одной дополнительной копией файла.
func (s *Uploads) assemble(ctx context.Context, session models.UploadSession) error {
	chunks, err := s.Staging.Chunks(session.StorageName)
	if err != nil {
		s.failSession(ctx, session.ID)
		return fmt.Errorf("list staged chunks: %w", err)
	}

	if err := verifyCoverage(chunks, session.DeclaredSize); err != nil {
		// Staging сохраняем: оператор или повторная доставка могут
		// закрыть дыру, угадывать за клиента движок не берётся.
		s.failSession(ctx, session.ID)
		return err
	}

	finalPath := filepath.Join(s.UploadDir, session.ArtifactName())
	tmpPath := finalPath + partialSuffix

	if err := s.streamChunks(chunks, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		s.failSession(ctx, session.ID)
		return fmt.Errorf("stream chunks: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		s.failSession(ctx, session.ID)
		return fmt.Errorf("publish artifact: %w", err)
	}

	if err := s.Sessions.SetFinalArtifact(ctx, session.ID, finalPath); err != nil {
		s.failSession(ctx, session.ID)
		return fmt.Errorf("record artifact path: %w", err)
	}
	swapped, err := s.Sessions.CompareAndSwapStatus(ctx, session.ID, models.StatusAssembling, models.StatusCompleted)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if !swapped {
		// Сессию увели из assembling извне — скажем, реконсилиация сочла
		// сборку зависшей. Публикация отменяется: файл не должен остаться
		// на диске у сессии, которая completed так и не стала.
		_ = os.Remove(finalPath)
		if err := s.Sessions.SetFinalArtifact(ctx, session.ID, ""); err != nil {
			log.Printf("UPLOAD cleanup: clear artifact path for %s: %v", session.ID, err)
		}
		return fmt.Errorf("%w: session left assembling before completion", models.ErrInvalidState)
	}

	// Каталог к этому моменту пуст; неудача удаления не фатальна.
	if err := s.Staging.RemoveIfEmpty(session.StorageName); err != nil {
		log.Printf("UPLOAD cleanup: remove staging dir %s: %v", session.StorageName, err)
	}

	return nil
}

// verifyCoverage проверяет, что части покрывают [0, declaredSize) ровно один
// раз: без дыр, без перекрытий, без недобора в хвосте.
func verifyCoverage(chunks []staging.Chunk, declaredSize int64) error {
	var next int64
	for _, c := range chunks {
		if c.Offset > next {
			return fmt.Errorf("%w: gap at [%d, %d)", models.ErrCoverage, next, c.Offset)
		}
		if c.Offset < next {
			return fmt.Errorf("%w: overlap at offset %d", models.ErrCoverage, c.Offset)
		}
		next += c.Size
	}
	if next != declaredSize {
		return fmt.Errorf("%w: covered %d of %d bytes", models.ErrCoverage, next, declaredSize)
	}
	return nil
}

// streamChunks последовательно переливает части во временный файл,
// удаляя каждую сразу после успешного копирования.
func (s *Uploads) streamChunks(chunks []staging.Chunk, tmpPath string) error {
	dst, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	for _, c := range chunks {
		if err := copyChunk(dst, c); err != nil {
			return err
		}
		if err := os.Remove(c.Path); err != nil {
			log.Printf("UPLOAD cleanup: remove chunk %s: %v", c.Path, err)
		}
	}

	if err := dst.Sync(); err != nil {
		return err
	}
	return dst.Close()
}

func copyChunk(dst io.Writer, c staging.Chunk) error {
	src, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return err
	}
	if n != c.Size {
		return fmt.Errorf("chunk at %d changed size during assembly: want %d, got %d", c.Offset, c.Size, n)
	}
	return nil
}

// failSession переводит сессию в failed, откуда бы переход ни шёл.
// Ошибка самого перевода только логируется: исходная причина важнее.
func (s *Uploads) failSession(ctx context.Context, id string) {
	for _, from := range []models.Status{models.StatusAssembling, models.StatusPending} {
		swapped, err := s.Sessions.CompareAndSwapStatus(ctx, id, from, models.StatusFailed)
		if err != nil {
			log.Printf("UPLOAD fail transition for %s: %v", id, err)
			return
		}
		if swapped {
			return
		}
	}
}
