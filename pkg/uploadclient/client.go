// Package uploadclient — HTTP-клиент Upload API. Части идемпотентны по
// смещению, поэтому транспорт с повторами безопасен.
package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sir_venger/upload_lite/pkg/uploadproto"
)

type CreateSessionRequest struct {
	FileName  string `json:"file_name,omitempty"`
	Extension string `json:"extension"`
	MimeType  string `json:"mime_type,omitempty"`
	Size      int64  `json:"size"`
}

type Session struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
}

type SessionInfo struct {
	UploadID  string `json:"upload_id"`
	FileName  string `json:"file_name"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
	Status    string `json:"status"`
}

type Client interface {
	// CreateSession регистрирует новую сессию загрузки.
	CreateSession(ctx context.Context, baseURL string, req CreateSessionRequest) (Session, error)
	// PutChunk отправляет часть файла по байтовому смещению.
	PutChunk(ctx context.Context, baseURL, uploadID string, offset int64, data []byte) (int64, error)
	// Status возвращает метаданные и статус сессии.
	Status(ctx context.Context, baseURL, uploadID string) (SessionInfo, error)
	// Download отдаёт поток собранного файла.
	Download(ctx context.Context, baseURL, uploadID string) (io.ReadCloser, error)
	// Delete удаляет сессию вместе с данными.
	Delete(ctx context.Context, baseURL, uploadID string) error
}

type httpClient struct {
	c *retryablehttp.Client
}

const defaultRetryMax = 3

// New создаёт клиент с повторяющим транспортом по умолчанию.
func New() Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = defaultRetryMax
	rc.Logger = nil

	return &httpClient{c: rc}
}

// CreateSession выполняет POST /sessions.
func (h *httpClient) CreateSession(ctx context.Context, baseURL string, req CreateSessionRequest) (Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Session{}, err
	}

	u := fmt.Sprintf(uploadproto.SessionsPathFormat, baseURL)
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(httpReq)
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return Session{}, fmt.Errorf("create session failed: %s", resp.Status)
	}

	var out Session
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Session{}, err
	}
	return out, nil
}

// PutChunk выполняет PUT /sessions/{id}/chunks/{offset} и возвращает
// отметку received_through.
func (h *httpClient) PutChunk(ctx context.Context, baseURL, uploadID string, offset int64, data []byte) (int64, error) {
	u := fmt.Sprintf(uploadproto.ChunkPathFormat, baseURL, uploadID, offset)
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, u, data)
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")

	resp, err := h.c.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("chunk PUT failed: %s", resp.Status)
	}

	var out struct {
		ReceivedThrough int64 `json:"received_through"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.ReceivedThrough, nil
}

// Status выполняет GET /sessions/{id}.
func (h *httpClient) Status(ctx context.Context, baseURL, uploadID string) (SessionInfo, error) {
	u := fmt.Sprintf(uploadproto.SessionPathFormat, baseURL, uploadID)
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return SessionInfo{}, err
	}

	resp, err := h.c.Do(httpReq)
	if err != nil {
		return SessionInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return SessionInfo{}, fmt.Errorf("session %s not found", uploadID)
	}
	if resp.StatusCode != http.StatusOK {
		return SessionInfo{}, fmt.Errorf("session status failed: %s", resp.Status)
	}

	var out SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SessionInfo{}, err
	}
	if out.UploadID == "" {
		out.UploadID = uploadID
	}
	return out, nil
}

// Download выполняет GET /sessions/{id}/content и возвращает поток с телом.
func (h *httpClient) Download(ctx context.Context, baseURL, uploadID string) (io.ReadCloser, error) {
	u := fmt.Sprintf(uploadproto.ContentPathFormat, baseURL, uploadID)
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.c.Do(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("content GET failed: %s", resp.Status)
	}

	return resp.Body, nil
}

// Delete выполняет DELETE /sessions/{id}.
func (h *httpClient) Delete(ctx context.Context, baseURL, uploadID string) error {
	u := fmt.Sprintf(uploadproto.SessionPathFormat, baseURL, uploadID)
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}

	resp, err := h.c.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("session DELETE failed: %s", resp.Status)
	}
	return nil
}
