package bank

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DirLoader returns a FileLoader reading question-set files from base.
// Manifest file names are treated as relative keys; paths escaping base are
// rejected.
func DirLoader(base string) FileLoader {
	return func(file string) ([]byte, error) {
		if file == "" {
			return nil, errors.New("empty file name")
		}
		name := filepath.Clean(file)
		if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
			return nil, errors.New("file name escapes bank directory")
		}
		return os.ReadFile(filepath.Join(base, name))
	}
}
