package models

import (
	"fmt"
	"time"
)

// Status описывает этап жизненного цикла загрузки.
type Status string

const (
	// StatusPending — сессия создана, части могут приходить.
	StatusPending Status = "pending"
	// StatusAssembling — достигнут последний байт, идёт сборка итогового файла.
	StatusAssembling Status = "assembling"
	// StatusCompleted — итоговый файл собран, staging удалён.
	StatusCompleted Status = "completed"
	// StatusFailed — сборка не удалась; staging сохранён для разбора.
	StatusFailed Status = "failed"
)

// transitions — единственные допустимые переходы статуса.
// Переход pending→assembling дополнительно защищён CAS в хранилище:
// для каждой сессии он должен случиться не более одного раза.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAssembling, StatusFailed},
	StatusAssembling: {StatusCompleted, StatusFailed},
}

// CanTransition отвечает, допустим ли переход from→to.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal сообщает, является ли статус конечным.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus восстанавливает Status из строки хранилища.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusAssembling, StatusCompleted, StatusFailed:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown session status %q", raw)
}

// UploadSession содержит метаданные одной логической загрузки.
type UploadSession struct {
	ID           string    `json:"upload_id"`
	StorageName  string    `json:"-"`
	OriginalName string    `json:"file_name,omitempty"`
	Extension    string    `json:"extension"`
	MimeType     string    `json:"mime_type,omitempty"`
	DeclaredSize int64     `json:"size"`
	Status       Status    `json:"status"`
	ArtifactPath string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ArtifactName возвращает имя итогового файла в каталоге выгрузки.
func (s UploadSession) ArtifactName() string {
	return s.StorageName + "." + s.Extension
}

// IngestResult возвращается после успешной записи части.
// ReceivedThrough — суммарный объём принятых частей в байтах,
// без учёта повторов по одному и тому же offset.
type IngestResult struct {
	ReceivedThrough int64 `json:"received_through"`
}

// SessionMetadata — входные данные при создании сессии, уже прошедшие внешний валидатор.
type SessionMetadata struct {
	OriginalName string
	Extension    string
	MimeType     string
	DeclaredSize int64
}
