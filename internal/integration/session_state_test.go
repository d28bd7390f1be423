package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/sir_venger/upload_lite/pkg/uploadclient"
)

func Test_ChunkAfterCompletion_Conflicts(t *testing.T) {
	srv := newTestServer(t, nil)
	cli := uploadclient.New()
	ctx := context.Background()

	session, err := cli.CreateSession(ctx, srv.URL, uploadclient.CreateSessionRequest{
		Extension: "bin",
		Size:      10,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cli.PutChunk(ctx, srv.URL, session.UploadID, 5, []byte("WORLD")); err != nil {
		t.Fatal(err)
	}
	if _, err := cli.PutChunk(ctx, srv.URL, session.UploadID, 0, []byte("HELLO")); err != nil {
		t.Fatal(err)
	}

	// Сессия собрана; повторная часть должна упереться в конфликт статуса.
	status, body := putRawChunk(t, srv.URL, session.UploadID, 0, []byte("HELLO"))
	if status != http.StatusConflict {
		t.Fatalf("late chunk status %d (%s), want 409", status, body)
	}
}

func Test_CoverageGap_NeverCompletes(t *testing.T) {
	srv := newTestServer(t, nil)
	cli := uploadclient.New()
	ctx := context.Background()

	session, err := cli.CreateSession(ctx, srv.URL, uploadclient.CreateSessionRequest{
		Extension: "bin",
		Size:      10,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cli.PutChunk(ctx, srv.URL, session.UploadID, 0, []byte("AAAA")); err != nil {
		t.Fatal(err)
	}

	// Часть [6, 10) доходит до последнего байта, но байты [4, 6) так и не
	// приходили: отметка стоит на 8, сборка не стартует.
	received, err := cli.PutChunk(ctx, srv.URL, session.UploadID, 6, []byte("BBBB"))
	if err != nil {
		t.Fatal(err)
	}
	if received != 8 {
		t.Fatalf("received through %d, want 8", received)
	}

	info, err := cli.Status(ctx, srv.URL, session.UploadID)
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != "pending" {
		t.Fatalf("session status %q, want pending", info.Status)
	}

	if _, err := cli.Download(ctx, srv.URL, session.UploadID); err == nil {
		t.Fatalf("artifact must not be downloadable with a byte gap")
	}
}

func Test_CoverageOverlap_FailsSession(t *testing.T) {
	srv := newTestServer(t, nil)
	cli := uploadclient.New()
	ctx := context.Background()

	session, err := cli.CreateSession(ctx, srv.URL, uploadclient.CreateSessionRequest{
		Extension: "bin",
		Size:      10,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cli.PutChunk(ctx, srv.URL, session.UploadID, 0, []byte("AAAAAA")); err != nil {
		t.Fatal(err)
	}

	// Байт 10 набран, но части [0, 6) и [4, 10) налегают друг на друга —
	// сборка обязана отказаться и пометить сессию failed.
	status, _ := putRawChunk(t, srv.URL, session.UploadID, 4, []byte("BBBBBB"))
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("overlap chunk status %d, want 422", status)
	}

	info, err := cli.Status(ctx, srv.URL, session.UploadID)
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != "failed" {
		t.Fatalf("session status %q, want failed", info.Status)
	}

	if _, err := cli.Download(ctx, srv.URL, session.UploadID); err == nil {
		t.Fatalf("artifact must not be downloadable for a failed session")
	}
}

func Test_ChunkBeyondDeclaredSize_Rejected(t *testing.T) {
	srv := newTestServer(t, nil)
	cli := uploadclient.New()

	session, err := cli.CreateSession(context.Background(), srv.URL, uploadclient.CreateSessionRequest{
		Extension: "bin",
		Size:      10,
	})
	if err != nil {
		t.Fatal(err)
	}

	status, _ := putRawChunk(t, srv.URL, session.UploadID, 8, []byte("ABCDE"))
	if status != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("oversized chunk status %d, want 416", status)
	}
}

func Test_CreateSession_RejectsBadMetadata(t *testing.T) {
	srv := newTestServer(t, nil)

	cases := []map[string]any{
		{"extension": "", "size": 10},
		{"extension": "bin", "size": 0},
		{"extension": "../etc", "size": 10},
	}
	for _, payload := range cases {
		b, _ := json.Marshal(payload)
		resp, err := http.Post(srv.URL+"/sessions", "application/json", bytes.NewReader(b))
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("create %v status %d, want 400", payload, resp.StatusCode)
		}
	}
}

func putRawChunk(t *testing.T, baseURL, uploadID string, offset int64, data []byte) (int, string) {
	t.Helper()

	u := fmt.Sprintf("%s/sessions/%s/chunks/%d", baseURL, uploadID, offset)
	req, err := http.NewRequest(http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, string(bytes.TrimSpace(body))
}
