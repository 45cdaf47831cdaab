// Package smpx reads and writes rig archive files: the definition JSON
// plus per-shape vertex samples and the static mesh topology, bundled
// into one self-contained container.
//
// Two container encodings exist. The modern one is a gzip-compressed
// JSON document; the legacy one is the same document uncompressed. Reads
// sniff the encoding, writes pick it from ArchiveData.Legacy.
package smpx

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/aretw0/shaperig/pkg/ports"
)

// container is the on-disk document. Vertex samples are flattened to
// coordinate triples so the file stays toolchain-neutral.
type container struct {
	Definition json.RawMessage      `json:"definition"`
	ShapeNames []string             `json:"shapeNames"`
	Samples    [][][3]float64       `json:"samples"`
	Faces      []int                `json:"faces"`
	Counts     []int                `json:"counts"`
	WeightMaps map[string][]float64 `json:"weightMaps,omitempty"`
}

// Archive implements ports.ArchiveReader and ports.ArchiveWriter on the
// local filesystem.
type Archive struct{}

// New creates a filesystem archive adapter.
func New() *Archive {
	return &Archive{}
}

var gzipMagic = []byte{0x1f, 0x8b}

// ReadArchive loads an archive file, sniffing the container encoding.
func (a *Archive) ReadArchive(path string) (*ports.ArchiveData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", path, err)
	}

	legacy := !bytes.HasPrefix(raw, gzipMagic)
	if !legacy {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("opening archive %s: %w", path, err)
		}
		raw, err = io.ReadAll(zr)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("decompressing archive %s: %w", path, err)
		}
	}

	var doc container
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing archive %s: %w", path, err)
	}
	if len(doc.Samples) != len(doc.ShapeNames) {
		return nil, fmt.Errorf("archive %s: %d shape names but %d samples",
			path, len(doc.ShapeNames), len(doc.Samples))
	}

	data := &ports.ArchiveData{
		Definition: []byte(doc.Definition),
		ShapeNames: doc.ShapeNames,
		Samples:    make([][]r3.Vec, len(doc.Samples)),
		Faces:      doc.Faces,
		Counts:     doc.Counts,
		WeightMaps: doc.WeightMaps,
		Legacy:     legacy,
	}
	for i, sample := range doc.Samples {
		verts := make([]r3.Vec, len(sample))
		for j, p := range sample {
			verts[j] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
		}
		data.Samples[i] = verts
	}
	return data, nil
}

// WriteArchive persists an archive file in the encoding data.Legacy
// selects.
func (a *Archive) WriteArchive(path string, data *ports.ArchiveData) error {
	if len(data.Samples) != len(data.ShapeNames) {
		return fmt.Errorf("archive %s: %d shape names but %d samples",
			path, len(data.ShapeNames), len(data.Samples))
	}

	doc := container{
		Definition: json.RawMessage(data.Definition),
		ShapeNames: data.ShapeNames,
		Samples:    make([][][3]float64, len(data.Samples)),
		Faces:      data.Faces,
		Counts:     data.Counts,
		WeightMaps: data.WeightMaps,
	}
	for i, verts := range data.Samples {
		sample := make([][3]float64, len(verts))
		for j, v := range verts {
			sample[j] = [3]float64{v.X, v.Y, v.Z}
		}
		doc.Samples[i] = sample
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding archive %s: %w", path, err)
	}

	if !data.Legacy {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return fmt.Errorf("compressing archive %s: %w", path, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compressing archive %s: %w", path, err)
		}
		raw = buf.Bytes()
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing archive %s: %w", path, err)
	}
	return nil
}

var (
	_ ports.ArchiveReader = (*Archive)(nil)
	_ ports.ArchiveWriter = (*Archive)(nil)
)
