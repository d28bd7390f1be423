package uploadclient

import (
	"context"
	"fmt"
	"io"
)

const defaultChunkSize = 4 << 20

// UploadFile режет поток на части и загружает их последовательно: создаёт
// сессию, шлёт chunk'и по смещениям и возвращает сессию, когда сервер
// подтвердил последний байт. Порядок здесь последовательный только для
// простоты клиента — сервер принимает части в любом порядке.
func UploadFile(ctx context.Context, cli Client, baseURL string, r io.Reader, meta CreateSessionRequest, chunkSize int64) (Session, error) {
	if meta.Size <= 0 {
		return Session{}, fmt.Errorf("file size must be > 0")
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	session, err := cli.CreateSession(ctx, baseURL, meta)
	if err != nil {
		return Session{}, err
	}

	buf := make([]byte, chunkSize)
	var offset int64
	for offset < meta.Size {
		if err := ctx.Err(); err != nil {
			return session, err
		}

		want := chunkSize
		if remaining := meta.Size - offset; remaining < want {
			want = remaining
		}

		n, err := io.ReadFull(r, buf[:want])
		if err != nil {
			return session, fmt.Errorf("read chunk at %d: %w", offset, err)
		}

		if _, err := cli.PutChunk(ctx, baseURL, session.UploadID, offset, buf[:n]); err != nil {
			return session, fmt.Errorf("put chunk at %d: %w", offset, err)
		}
		offset += int64(n)
	}

	return session, nil
}
