package loader

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"architect/internal/apperr"
	"architect/internal/model"
)

// fileSource abstracts "read a named file from this package layout,"
// shared by the directory and zip loaders.
type fileSource interface {
	readFile(name string) ([]byte, bool, error)
}

func loadFromSource(src fileSource) (*model.Package, error) {
	raw, ok, err := src.readFile("manifest.json")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ConfigInvalidShape("manifest.json is required")
	}
	var manifest model.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, apperr.ConfigInvalidShape(fmt.Sprintf("manifest.json: %v", err))
	}
	if manifest.ID == "" || manifest.Schema == "" {
		return nil, apperr.ConfigInvalidShape("manifest.json must have 'id' and 'schema'")
	}

	pkg := &model.Package{Manifest: manifest}
	for _, kind := range KindOrder {
		body, ok, err := src.readFile(kind + ".json")
		if err != nil {
			return nil, err
		}
		if !ok {
			body = nil
		}
		if err := decodeKind(kind, body, pkg); err != nil {
			return nil, err
		}
	}
	applyDefaultSchema(pkg)
	return pkg, nil
}

// FromDirectory loads a package laid out as manifest.json + per-kind JSON
// files in a directory on disk.
type FromDirectory struct {
	Dir string
}

func (f FromDirectory) Load(ctx context.Context) (*model.Package, error) {
	return loadFromSource(dirSource{dir: f.Dir})
}

type dirSource struct{ dir string }

func (d dirSource) readFile(name string) ([]byte, bool, error) {
	b, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	return b, true, nil
}

// FromZip loads a package from a zip archive containing the same layout
// as FromDirectory: manifest.json required, each per-kind file optional.
// A file matches by its exact name at the archive root or by a path
// ending in "/<name>" at any depth; the first match in archive order wins.
type FromZip struct {
	Reader io.ReaderAt
	Size   int64
}

func (f FromZip) Load(ctx context.Context) (*model.Package, error) {
	zr, err := zip.NewReader(f.Reader, f.Size)
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid zip: %v", err))
	}
	return loadFromSource(zipSource{zr: zr})
}

type zipSource struct{ zr *zip.Reader }

func (z zipSource) readFile(name string) ([]byte, bool, error) {
	for _, f := range z.zr.File {
		if f.Name == name || (len(f.Name) > len(name) && f.Name[len(f.Name)-len(name)-1] == '/' && f.Name[len(f.Name)-len(name):] == name) {
			rc, err := f.Open()
			if err != nil {
				return nil, false, fmt.Errorf("open %s in zip: %w", name, err)
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				return nil, false, fmt.Errorf("read %s in zip: %w", name, err)
			}
			return b, true, nil
		}
	}
	return nil, false, nil
}
