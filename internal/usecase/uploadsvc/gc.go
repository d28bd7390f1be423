package uploadsvc

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sir_venger/upload_lite/internal/models"
	"golang.org/x/sync/errgroup"
)

const gcConcurrency = 4

// GarbageCollect помечает failed брошенные сессии — pending или assembling
// старше maxAge без недавней активности в staging — и освобождает их staging.
// Таймер движку не принадлежит: запуск внешний (тикер в main или /admin/gc).
// Зависшая после падения процесса сборка выходит из assembling этим же путём.
func (s *Uploads) GarbageCollect(ctx context.Context, maxAge time.Duration) (int, error) {
	all, err := s.Sessions.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)

	var swept atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(gcConcurrency)

	for _, session := range all {
		if session.Status.Terminal() || session.UpdatedAt.After(cutoff) {
			continue
		}
		session := session

		eg.Go(func() error {
			// Свежий chunk двигает mtime в staging — такая сессия ещё жива.
			if last, err := s.Staging.LastActivity(session.StorageName); err == nil && last.After(cutoff) {
				return nil
			}

			swapped, err := s.Sessions.CompareAndSwapStatus(egCtx, session.ID, session.Status, models.StatusFailed)
			if err != nil || !swapped {
				return err
			}
			if err := s.Staging.Remove(session.StorageName); err != nil {
				log.Printf("UPLOAD gc: remove staging dir %s: %v", session.StorageName, err)
			}
			swept.Add(1)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return int(swept.Load()), err
	}
	return int(swept.Load()), nil
}

// StartGC запускает периодическую очистку и возвращает функцию остановки.
func StartGC(svc Service, maxAge, every time.Duration) func() {
	if every <= 0 || maxAge <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				if n, err := svc.GarbageCollect(context.Background(), maxAge); err != nil {
					log.Printf("UPLOAD gc: %v", err)
				} else if n > 0 {
					log.Printf("UPLOAD gc: swept %d abandoned sessions", n)
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}
