package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quillback/quill/internal/api"
)

// Filesystem reads documents from a local directory tree, typically a
// synced export of a document library. File names are slash-separated
// paths relative to the root.
type Filesystem struct {
	root string
}

func NewFilesystem(root string) *Filesystem {
	return &Filesystem{root: root}
}

func (f *Filesystem) Type() api.SourceType {
	return api.SourceSharepoint
}

func (f *Filesystem) List(ctx context.Context) ([]string, error) {
	var names []string

	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (f *Filesystem) Fetch(ctx context.Context, name string) (api.SourceFile, error) {
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(name)))
	if err != nil {
		return api.SourceFile{}, err
	}
	return api.SourceFile{
		Name: name,
		Type: f.Type(),
		Data: data,
	}, nil
}
