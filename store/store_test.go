package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// memS3 is an in-memory S3 backend.
type memS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemS3() *memS3 { return &memS3{objects: map[string][]byte{}} }

func (m *memS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[*in.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (m *memS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, &apiError{code: "NotFound"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func put(t *testing.T, s FileStore, path, data string) {
	t.Helper()
	w, err := s.Write(context.Background(), path)
	if err != nil {
		t.Fatalf("Write(%s): %v", path, err)
	}
	if _, err := io.WriteString(w, data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func exercise(t *testing.T, s FileStore) {
	ctx := context.Background()

	if ok, err := s.Exists(ctx, "a_tags.json"); err != nil || ok {
		t.Fatalf("Exists before write = %v, %v", ok, err)
	}
	if _, err := s.Read(ctx, "a_tags.json"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read missing: err = %v, want ErrNotExist", err)
	}

	put(t, s, "a_tags.json", `[{"text":"hi"}]`)
	got, err := ReadAll(ctx, s, "a_tags.json")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != `[{"text":"hi"}]` {
		t.Errorf("ReadAll = %q", got)
	}
	if ok, _ := s.Exists(ctx, "a_tags.json"); !ok {
		t.Error("Exists after write = false")
	}

	put(t, s, "a_tags.json", `[]`)
	if got, _ := ReadAll(ctx, s, "a_tags.json"); string(got) != `[]` {
		t.Errorf("overwrite: got %q", got)
	}

	if err := s.Delete(ctx, "a_tags.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a_tags.json"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestLocal(t *testing.T) {
	s, err := NewLocal(t.TempDir() + "/out/tags")
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, s)
}

func TestS3(t *testing.T) {
	exercise(t, NewS3(newMemS3(), "bucket", ""))
}

func TestS3Prefix(t *testing.T) {
	m := newMemS3()
	s := NewS3(m, "bucket", "captions/run1")
	put(t, s, "x-prettified_tags.json", "[]")
	if _, ok := m.objects["captions/run1/x-prettified_tags.json"]; !ok {
		t.Fatalf("keys = %v", m.objects)
	}
}

func TestS3PutError(t *testing.T) {
	m := newMemS3()
	m.putErr = errors.New("access denied")
	s := NewS3(m, "bucket", "")
	w, err := s.Write(context.Background(), "x.json")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "[]")
	if err := w.Close(); err == nil || err.Error() != "access denied" {
		t.Errorf("Close = %v, want access denied", err)
	}
}

func TestS3ClientPutObject(t *testing.T) {
	type upload struct {
		path    string
		length  int64
		chunked bool
		body    string
	}
	got := make(chan upload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "unexpected "+r.Method, http.StatusMethodNotAllowed)
			return
		}
		b, _ := io.ReadAll(r.Body)
		got <- upload{
			path:    r.URL.Path,
			length:  r.ContentLength,
			chunked: len(r.TransferEncoding) > 0,
			body:    string(b),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewS3Client(S3Options{Region: "us-east-1", Endpoint: srv.URL, AccessKey: "k", SecretKey: "s"})
	st := NewS3(client, "captions", "run1")
	body := `[{"start_time":0.5,"end_time":1,"text":"Hello world."}]`
	put(t, st, "a.wav_tags.json", body)

	u := <-got
	if u.path != "/captions/run1/a.wav_tags.json" {
		t.Errorf("path = %q", u.path)
	}
	if u.chunked || u.length != int64(len(body)) {
		t.Errorf("content length = %d, chunked = %v; want %d unchunked", u.length, u.chunked, len(body))
	}
	if u.body != body {
		t.Errorf("body = %q", u.body)
	}
}
