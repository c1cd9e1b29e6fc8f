// Package meshio writes meshes to disk as binary STL.
package meshio

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/unixpickle/model3d/model3d"
	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// DirPerm is the permission used for created output directories.
	DirPerm = 0o755
	// FilePerm is the permission of written mesh files.
	FilePerm = 0o644
)

// STLWriter implements ports.MeshWriter.
type STLWriter struct{}

// NewSTLWriter creates an STLWriter.
func NewSTLWriter() *STLWriter {
	return &STLWriter{}
}

// Write stores mesh at path. The file is replaced atomically.
func (w *STLWriter) Write(path string, mesh *domain.Mesh) error {
	if mesh.IsEmpty() {
		return zerr.With(zerr.Wrap(domain.ErrMeshWriteFailed, "mesh has no triangles"), "path", path)
	}

	if err := writeAtomic(path, Triangles(mesh)); err != nil {
		return zerr.With(errors.Join(domain.ErrMeshWriteFailed, err), "path", path)
	}
	return nil
}

// Triangles converts mesh to model3d triangles.
func Triangles(mesh *domain.Mesh) []*model3d.Triangle {
	tris := make([]*model3d.Triangle, mesh.TriangleCount())
	for i := range tris {
		f := mesh.Triangle(i)
		tris[i] = &model3d.Triangle{
			model3d.NewCoord3DArray(mesh.Vertex(f[0])),
			model3d.NewCoord3DArray(mesh.Vertex(f[1])),
			model3d.NewCoord3DArray(mesh.Vertex(f[2])),
		}
	}
	return tris
}

func writeAtomic(path string, tris []*model3d.Triangle) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create output directory")
	}

	tmpFile, err := os.CreateTemp(dir, ".mesh-*.stl")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp mesh file")
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err := model3d.WriteSTL(tmpFile, tris); err != nil {
		_ = tmpFile.Close()
		return zerr.Wrap(err, "failed to encode stl")
	}
	if err := tmpFile.Close(); err != nil {
		return zerr.Wrap(err, "failed to close temp mesh file")
	}
	if err := os.Chmod(tmpName, FilePerm); err != nil {
		return zerr.Wrap(err, "failed to chmod mesh file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.Wrap(err, "failed to rename temp mesh file")
	}
	return nil
}
