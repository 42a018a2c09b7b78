package uploads

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"zhujian/internal/errs"
)

var allowedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".heic": {},
}

// Store writes uploaded photos under content-random names and hands back
// the stable root-relative reference form "/uploads/<name>".
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

type SavedPhoto struct {
	URL  string
	Path string
}

func (s *Store) Save(data []byte, originalName string) (SavedPhoto, error) {
	if len(data) == 0 {
		return SavedPhoto{}, errors.New("empty upload body")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExts[ext]; !ok {
		ext = ".jpg"
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return SavedPhoto{}, errs.Wrap(err, "create uploads directory")
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return SavedPhoto{}, errs.Wrap(err, "write upload")
	}

	return SavedPhoto{URL: "/uploads/" + name, Path: path}, nil
}
