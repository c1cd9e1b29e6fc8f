// Package shapeio reads correspondence particle files.
//
// A particle file holds one point per line as three whitespace-separated
// coordinates. Blank lines and lines starting with '#' are ignored.
package shapeio

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// ParticleReader implements ports.ShapeReader for particle files.
type ParticleReader struct{}

// NewParticleReader creates a ParticleReader.
func NewParticleReader() *ParticleReader {
	return &ParticleReader{}
}

// Read parses the particle file at path.
func (r *ParticleReader) Read(path string) (domain.ShapeVector, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrShapeReadFailed, err), "path", path)
	}
	defer func() { _ = f.Close() }()

	shape, err := Parse(f)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return shape, nil
}

// Parse decodes particles from r.
func Parse(r io.Reader) (domain.ShapeVector, error) {
	var coords []float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrShapeParseFailed, "expected three coordinates"),
				"line", line), "fields", len(fields))
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, zerr.With(errors.Join(domain.ErrShapeParseFailed, err), "line", line)
			}
			coords = append(coords, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Join(domain.ErrShapeReadFailed, err)
	}

	return domain.NewShapeVector(coords)
}
