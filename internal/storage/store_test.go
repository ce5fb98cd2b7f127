package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dom/videotube-identity/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files := req.MultipartForm.File[field]
	require.Len(t, files, 1)
	return files[0]
}

func TestSaveTemp(t *testing.T) {
	dir := t.TempDir()

	t.Run("spools content", func(t *testing.T) {
		fh := multipartFile(t, "avatar", "me.png", "image/png", []byte("png-bytes"))

		lf, err := SaveTemp(fh, dir)
		require.NoError(t, err)
		defer lf.Remove()

		assert.Equal(t, "me.png", lf.Filename)
		assert.Equal(t, "image/png", lf.ContentType)
		assert.Equal(t, int64(9), lf.Size)
		assert.True(t, strings.HasSuffix(lf.Path, ".png"))

		data, err := os.ReadFile(lf.Path)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("sniffs missing content type", func(t *testing.T) {
		fh := multipartFile(t, "avatar", "me", "", []byte("hello world"))

		lf, err := SaveTemp(fh, dir)
		require.NoError(t, err)
		defer lf.Remove()

		assert.Equal(t, "text/plain; charset=utf-8", lf.ContentType)
	})

	t.Run("rejects empty part", func(t *testing.T) {
		fh := multipartFile(t, "avatar", "empty.png", "image/png", nil)

		lf, err := SaveTemp(fh, dir)
		assert.ErrorIs(t, err, ErrEmptyFile)
		assert.Nil(t, lf)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), "empty")
		}
	})
}

func TestLocalFile_Remove(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "x-*")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	lf := &LocalFile{Path: f.Name()}
	require.NoError(t, lf.Remove())
	require.NoError(t, lf.Remove())

	var nilFile *LocalFile
	assert.NoError(t, nilFile.Remove())

	RemoveAll(nil, lf, &LocalFile{})
}

type fakeS3 struct {
	mu      sync.Mutex
	status  int
	puts    map[string][]byte
	headers map[string]http.Header
}

func newFakeS3(status int) *fakeS3 {
	return &fakeS3{status: status, puts: map[string][]byte{}, headers: map[string]http.Header{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if f.status != http.StatusOK {
		w.WriteHeader(f.status)
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f.mu.Lock()
	f.puts[r.URL.Path] = body
	f.headers[r.URL.Path] = r.Header.Clone()
	f.mu.Unlock()
	w.Header().Set("ETag", `"etag"`)
	w.WriteHeader(http.StatusOK)
}

func newTestStore(t *testing.T, fake *fakeS3, cfg config.S3Config) *S3Store {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	if cfg.Endpoint == "" {
		cfg.Endpoint = srv.URL
	}
	client := s3.New(s3.Options{
		Region:           cfg.Region,
		Credentials:      credentials.NewStaticCredentialsProvider("key", "secret", ""),
		BaseEndpoint:     &srv.URL,
		UsePathStyle:     true,
		RetryMaxAttempts: 1,
	})
	store := NewS3StoreWithClient(client, cfg)
	store.now = func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }
	return store
}

func tempFile(t *testing.T, name, content string) *LocalFile {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "upload-*")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return &LocalFile{Path: f.Name(), Filename: name, ContentType: "image/png", Size: int64(len(content))}
}

func TestS3Store_Upload(t *testing.T) {
	t.Run("puts object and returns endpoint url", func(t *testing.T) {
		fake := newFakeS3(http.StatusOK)
		store := newTestStore(t, fake, config.S3Config{Bucket: "media", Region: "us-east-1", KeyPrefix: "uploads"})
		lf := tempFile(t, "Avatar.PNG", "image-data")

		url, err := store.Upload(context.Background(), lf)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(url, store.endpoint+"/media/uploads/2024/03/07/"), url)
		assert.True(t, strings.HasSuffix(url, ".png"), url)

		require.Len(t, fake.puts, 1)
		for path, body := range fake.puts {
			assert.True(t, strings.HasPrefix(path, "/media/uploads/2024/03/07/"), path)
			assert.Equal(t, "image-data", string(body))
			assert.Equal(t, "image/png", fake.headers[path].Get("Content-Type"))
		}

		_, err = os.Stat(lf.Path)
		assert.True(t, os.IsNotExist(err), "temp file should be removed after upload")
	})

	t.Run("public base url wins", func(t *testing.T) {
		fake := newFakeS3(http.StatusOK)
		store := newTestStore(t, fake, config.S3Config{
			Bucket:        "media",
			Region:        "us-east-1",
			PublicBaseURL: "https://cdn.example.com/",
		})

		url, err := store.Upload(context.Background(), tempFile(t, "c.jpg", "x"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/2024/03/07/"), url)
	})

	t.Run("failure still removes temp file", func(t *testing.T) {
		fake := newFakeS3(http.StatusInternalServerError)
		store := newTestStore(t, fake, config.S3Config{Bucket: "media", Region: "us-east-1"})
		lf := tempFile(t, "a.png", "x")

		url, err := store.Upload(context.Background(), lf)
		assert.Error(t, err)
		assert.Empty(t, url)

		_, statErr := os.Stat(lf.Path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestS3Store_objectURL(t *testing.T) {
	s := &S3Store{bucket: "media", region: "eu-west-1"}
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/k.png", s.objectURL("k.png"))

	s.endpoint = "http://minio:9000"
	assert.Equal(t, "http://minio:9000/media/k.png", s.objectURL("k.png"))
}
