package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidPath    = errors.New("invalid object path")
)

// BlobStore - хранилище файлов результатов.
type BlobStore interface {
	Upload(ctx context.Context, objectPath string, r io.Reader) error
	Download(ctx context.Context, objectPath string) ([]byte, error)
	Delete(ctx context.Context, objectPath string) error
}

// FSBlobStore хранит объекты в файловой системе afero под корнем Root.
type FSBlobStore struct {
	Fs   afero.Fs
	Root string
}

// NewFSBlobStore создает хранилище в каталоге root файловой системы ОС.
func NewFSBlobStore(root string) *FSBlobStore {
	return NewFSBlobStoreWithFs(afero.NewOsFs(), root)
}

// NewFSBlobStoreWithFs создает хранилище поверх произвольной afero.Fs.
func NewFSBlobStoreWithFs(fs afero.Fs, root string) *FSBlobStore {
	return &FSBlobStore{Fs: fs, Root: filepath.Clean(root)}
}

// RandomObjectPath строит путь вида <proposalID>/<случайное имя>.<исходное расширение>.
func RandomObjectPath(proposalID, fileName string) string {
	ext := strings.ToLower(path.Ext(filepath.Base(fileName)))
	return proposalID + "/" + uuid.New().String() + ext
}

func (s *FSBlobStore) resolve(objectPath string) (string, error) {
	if objectPath == "" || strings.Contains(objectPath, "\\") || path.IsAbs(objectPath) {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(objectPath)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.Root, filepath.FromSlash(cleaned)), nil
}

// Upload записывает объект. Частично записанный файл удаляется при ошибке.
func (s *FSBlobStore) Upload(ctx context.Context, objectPath string, r io.Reader) error {
	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = s.Fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	f, err := s.Fs.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	_, err = io.Copy(f, &contextReader{ctx: ctx, r: r})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.Fs.Remove(fullPath)
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// Download читает объект целиком.
func (s *FSBlobStore) Download(ctx context.Context, objectPath string) ([]byte, error) {
	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.Fs, fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return data, nil
}

// Delete удаляет объект. Отсутствующий объект не считается ошибкой.
func (s *FSBlobStore) Delete(ctx context.Context, objectPath string) error {
	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err = s.Fs.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// contextReader прерывает копирование при отмене запроса.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
