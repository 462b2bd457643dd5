package store

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Disk stores each document as a file under a root directory.
type Disk struct {
	root string
}

// NewDisk returns a store rooted at dir, creating it if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "could not create the data directory")
	}

	return &Disk{root: dir}, nil
}

// path maps the key onto a file under the root. Keys must already be clean
// relative slash paths, so that no key can resolve to another document's file.
func (d *Disk) path(key string) (string, error) {
	if key == "" || key == "." || path.Clean(key) != key || path.IsAbs(key) || strings.Contains(key, `\`) {
		return "", errors.Errorf("invalid document key %q", key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", errors.Errorf("invalid document key %q", key)
		}
	}

	return filepath.Join(d.root, filepath.FromSlash(key)), nil
}

func (d *Disk) Exists(ctx context.Context, key string) (bool, error) {
	file, err := d.path(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, errors.Wrap(err, "could not stat document")
	}

	return !info.IsDir(), nil
}

func (d *Disk) Read(ctx context.Context, key string) ([]byte, error) {
	file, err := d.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "could not read document")
	}

	return data, nil
}

// Write replaces the document by renaming a fully written temporary file over
// it, so readers see either the old or the new document.
func (d *Disk) Write(ctx context.Context, key string, data []byte) error {
	file, err := d.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return errors.Wrap(err, "could not create document directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(file), ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "could not create temporary document")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "could not write temporary document")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "could not close temporary document")
	}

	if err := os.Rename(tmp.Name(), file); err != nil {
		return errors.Wrap(err, "could not replace document")
	}

	return nil
}

func (d *Disk) List(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)

	err := filepath.WalkDir(d.root, func(file string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".tmp-") {
			return nil
		}

		rel, err := filepath.Rel(d.root, file)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not list documents")
	}

	sort.Strings(keys)

	return keys, nil
}
