package upload

import (
	"os"
	"path"

	"github.com/spf13/afero"
)

// Storage keeps uploaded files under one root, one directory per kind.
type Storage struct {
	fs afero.Fs
}

func NewStorage(fs afero.Fs) *Storage {
	return &Storage{fs: fs}
}

// NewDiskStorage roots storage at dir on the local filesystem.
func NewDiskStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return NewStorage(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

func (s *Storage) Fs() afero.Fs { return s.fs }

// EnsureDirs creates the directory for each kind.
func (s *Storage) EnsureDirs(kinds ...Kind) error {
	for _, k := range kinds {
		if err := s.fs.MkdirAll(k.Directory, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Create opens a new file, failing with os.ErrExist if the name is taken.
func (s *Storage) Create(dir, name string) (afero.File, string, error) {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, "", err
	}
	p := path.Join(dir, name)
	f, err := s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, "", err
	}
	return f, p, nil
}

func (s *Storage) Remove(p string) error {
	return s.fs.Remove(p)
}

func (s *Storage) Exists(p string) (bool, error) {
	return afero.Exists(s.fs, p)
}
