// Package storage is the flat shared directory behind the file API. It owns
// the mapping from untrusted names to paths; callers never build paths
// themselves.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
)

// partialPrefix marks uploads that are still being written.
const partialPrefix = ".partial-"

var (
	ErrInvalidName = errors.New("invalid file name")
	ErrNotFound    = errors.New("file not found")
	ErrIsDir       = errors.New("is a directory")
)

type Root struct {
	dir string
}

// New resolves dir to an absolute path. The directory itself is created
// lazily.
func New(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	return &Root{dir: abs}, nil
}

func (r *Root) Dir() string { return r.dir }

// ValidateName accepts a single plain path segment.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidName
	case strings.ContainsAny(name, `/\`+"\x00"):
		return ErrInvalidName
	case filepath.IsAbs(name), !filepath.IsLocal(name):
		return ErrInvalidName
	case strings.HasPrefix(name, partialPrefix):
		return ErrInvalidName
	}
	return nil
}

// resolvePath ensures name is safe and stays within the root.
func (r *Root) resolvePath(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", fmt.Errorf("%w: %q", err, name)
	}
	target := filepath.Join(r.dir, name)
	if filepath.Dir(target) != r.dir {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return target, nil
}

// Ensure creates the root if it does not exist yet.
func (r *Root) Ensure() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("storage: create root: %w", err)
	}
	return nil
}

// List returns the direct entries of the root, creating it if needed.
// In-flight uploads are skipped. The result is never nil.
func (r *Root) List() ([]models.FileEntry, error) {
	if err := r.Ensure(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: read root: %w", err)
	}

	files := make([]models.FileEntry, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), partialPrefix) {
			continue
		}
		files = append(files, models.FileEntry{Name: e.Name(), IsDirectory: e.IsDir()})
	}
	return files, nil
}

// Save writes src under name. The content lands in a partial file first and
// is renamed into place, replacing any previous file of the same name.
func (r *Root) Save(name string, src io.Reader) (int64, error) {
	dst, err := r.resolvePath(name)
	if err != nil {
		return 0, err
	}
	if err := r.Ensure(); err != nil {
		return 0, err
	}

	tmp := filepath.Join(r.dir, partialPrefix+uuid.NewString())
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("storage: create partial: %w", err)
	}

	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("storage: write %q: %w", name, err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("storage: commit %q: %w", name, err)
	}
	return n, nil
}

// Open returns the named regular file for reading. The caller closes it.
func (r *Root) Open(name string) (*os.File, fs.FileInfo, error) {
	p, err := r.resolvePath(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("storage: open %q: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("storage: stat %q: %w", name, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %q", ErrIsDir, name)
	}
	return f, info, nil
}

// Remove deletes the named file or empty directory.
func (r *Root) Remove(name string) error {
	p, err := r.resolvePath(name)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("storage: remove %q: %w", name, err)
	}
	return nil
}
