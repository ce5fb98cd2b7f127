package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/videotube-identity/internal/storage"
)

var errNoMultipartForm = errors.New("request is not a multipart form")

// parseMultipart bounds the request body and parses the form. Parts larger
// than the in-memory threshold spill to disk and are released by the caller
// through r.MultipartForm.RemoveAll.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return err
	}
	if r.MultipartForm == nil {
		return errNoMultipartForm
	}
	return nil
}

// formFile spools the first file found under any of names. A missing file
// yields (nil, nil).
func formFile(r *http.Request, tempDir string, names ...string) (*storage.LocalFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	for _, name := range names {
		files := r.MultipartForm.File[name]
		if len(files) == 0 {
			continue
		}
		return storage.SaveTemp(files[0], tempDir)
	}
	return nil, nil
}

func uploadErrorMessage(err error) string {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return "Uploaded file is too large"
	case errors.Is(err, storage.ErrEmptyFile):
		return "Uploaded file is empty"
	default:
		return "Invalid multipart form"
	}
}
