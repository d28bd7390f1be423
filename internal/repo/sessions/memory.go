package sessions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sir_venger/upload_lite/internal/models"
)

// MemoryStore хранит сессии только в оперативной памяти; удобно для тестов
// и локального запуска с meta_dsn "memory://".
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.UploadSession
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]models.UploadSession{}}
}

// Create записывает новую сессию.
func (s *MemoryStore) Create(_ context.Context, session models.UploadSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get возвращает сессию по id или ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (models.UploadSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return models.UploadSession{}, models.ErrNotFound
	}
	return session, nil
}

// List возвращает метаданные всех сессий, свежие первыми.
func (s *MemoryStore) List(_ context.Context) ([]models.UploadSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.UploadSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CompareAndSwapStatus атомарно переводит статус expected→next под мьютексом.
func (s *MemoryStore) CompareAndSwapStatus(_ context.Context, id string, expected, next models.Status) (bool, error) {
	if !expected.CanTransition(next) {
		return false, fmt.Errorf("illegal status transition %s→%s", expected, next)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return false, models.ErrNotFound
	}
	if session.Status != expected {
		return false, nil
	}

	session.Status = next
	session.UpdatedAt = time.Now().UTC()
	s.sessions[id] = session
	return true, nil
}

// SetFinalArtifact фиксирует путь собранного файла.
func (s *MemoryStore) SetFinalArtifact(_ context.Context, id, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.ErrNotFound
	}
	session.ArtifactPath = path
	session.UpdatedAt = time.Now().UTC()
	s.sessions[id] = session
	return nil
}

// Delete удаляет запись сессии.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}
