package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dom/videotube-identity/internal/storage"
)

// FakeStore is an in-memory storage.Store. Like the S3 store it removes the
// local file whether or not the upload succeeds.
type FakeStore struct {
	mu      sync.Mutex
	Err     error
	FailOn  int // fail the Nth upload (1-based), 0 disables
	calls   int
	Uploads map[string][]byte
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Uploads: map[string][]byte{}}
}

func (s *FakeStore) Upload(ctx context.Context, file *storage.LocalFile) (string, error) {
	defer file.Remove()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.Err != nil && (s.FailOn == 0 || s.FailOn == s.calls) {
		return "", s.Err
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://assets.test/%d/%s", s.calls, file.Filename)
	s.Uploads[url] = data
	return url, nil
}

// Calls returns how many uploads were attempted
func (s *FakeStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Count returns how many uploads succeeded
func (s *FakeStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Uploads)
}
