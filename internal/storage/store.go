// Package storage spools uploaded files to local temp files and pushes them
// to object storage. Every temp file is removed once its upload finishes,
// whether the upload succeeded or not.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

var ErrEmptyFile = errors.New("uploaded file is empty")

// Store persists a local file and returns its public URL.
type Store interface {
	Upload(ctx context.Context, file *LocalFile) (string, error)
}

// LocalFile is an uploaded part spooled to disk.
type LocalFile struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// SaveTemp copies a multipart part into a temp file under dir (os.TempDir when empty).
func SaveTemp(fh *multipart.FileHeader, dir string) (*LocalFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open part: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	lf := &LocalFile{Path: dst.Name(), Filename: filepath.Base(fh.Filename)}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		lf.Remove()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if n == 0 {
		lf.Remove()
		return nil, ErrEmptyFile
	}
	lf.Size = n

	lf.ContentType = fh.Header.Get("Content-Type")
	if lf.ContentType == "" || lf.ContentType == "application/octet-stream" {
		lf.ContentType, err = sniffContentType(lf.Path)
		if err != nil {
			lf.Remove()
			return nil, err
		}
	}
	return lf, nil
}

func sniffContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open temp file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read temp file: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

// Remove deletes the temp file. Removing twice is fine.
func (f *LocalFile) Remove() error {
	if f == nil || f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll removes every non-nil file, ignoring errors.
func RemoveAll(files ...*LocalFile) {
	for _, f := range files {
		_ = f.Remove()
	}
}
