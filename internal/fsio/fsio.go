// Package fsio is the file capability boundary: every filesystem operation
// the engine performs goes through a Provider, so the host can swap in a
// different filesystem (and tests an in-memory one).
package fsio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/franz/worshipnote/internal/util"
	"github.com/spf13/afero"
)

// Provider is the minimal set of filesystem capabilities the engine consumes.
// Operations return errors for unexpected conditions; Exists reports expected
// absence without an error.
type Provider interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile creates intermediate directories and writes atomically
	WriteFile(path string, data []byte) error
	Rename(oldPath, newPath string) error
	Remove(path string) error
	Exists(path string) bool
	ListDir(path string) ([]string, error)
}

// AferoProvider implements Provider on top of an afero filesystem, retrying
// transient failures with backoff. Cloud-sync folders surface hydration
// delays as transient I/O errors.
type AferoProvider struct {
	fs    afero.Fs
	retry *util.RetryConfig
}

// New creates a Provider over the given filesystem
func New(fs afero.Fs, retry *util.RetryConfig) *AferoProvider {
	if retry == nil {
		retry = util.DefaultRetryConfig()
	}
	return &AferoProvider{fs: fs, retry: retry}
}

// NewOS creates a Provider over the real filesystem with default retries
func NewOS() *AferoProvider {
	return New(afero.NewOsFs(), util.DefaultRetryConfig())
}

// Fs exposes the underlying filesystem for collaborators that need it
func (p *AferoProvider) Fs() afero.Fs {
	return p.fs
}

// ReadFile reads the full contents of path
func (p *AferoProvider) ReadFile(path string) ([]byte, error) {
	return util.RetryWithBackoff(p.retry, func() ([]byte, error) {
		return afero.ReadFile(p.fs, path)
	}, fmt.Sprintf("read(%s)", path))
}

// WriteFile writes data to path, creating parent directories as needed.
// The write goes to a .part temporary first and is renamed into place, so a
// crash never leaves a torn file at the destination.
func (p *AferoProvider) WriteFile(path string, data []byte) error {
	return util.Retry(p.retry, func() error {
		if err := p.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		tempPath := path + ".part"
		if err := afero.WriteFile(p.fs, tempPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write temp file: %w", err)
		}
		if err := p.fs.Rename(tempPath, path); err != nil {
			p.fs.Remove(tempPath)
			return fmt.Errorf("failed to rename into place: %w", err)
		}
		return nil
	}, fmt.Sprintf("write(%s)", path))
}

// Rename moves a file within the filesystem
func (p *AferoProvider) Rename(oldPath, newPath string) error {
	return util.Retry(p.retry, func() error {
		return p.fs.Rename(oldPath, newPath)
	}, fmt.Sprintf("rename(%s -> %s)", oldPath, newPath))
}

// Remove deletes a file
func (p *AferoProvider) Remove(path string) error {
	return util.Retry(p.retry, func() error {
		err := p.fs.Remove(path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, util.ErrNotFound)
		}
		return err
	}, fmt.Sprintf("remove(%s)", path))
}

// Exists reports whether path exists. Errors are treated as absence.
func (p *AferoProvider) Exists(path string) bool {
	ok, err := afero.Exists(p.fs, path)
	return err == nil && ok
}

// ListDir returns the entry names directly under path
func (p *AferoProvider) ListDir(path string) ([]string, error) {
	infos, err := util.RetryWithBackoff(p.retry, func() ([]os.FileInfo, error) {
		return afero.ReadDir(p.fs, path)
	}, fmt.Sprintf("list(%s)", path))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}
