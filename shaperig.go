package shaperig

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/aretw0/shaperig/pkg/adapters/memory"
	"github.com/aretw0/shaperig/pkg/domain"
	"github.com/aretw0/shaperig/pkg/ports"
)

// Version is the library version reported by the CLI.
var Version = "0.1.0"

// Session is the high-level entry point for the shaperig library. It
// wraps one Simplex system together with its host adapter and logger.
type Session struct {
	system    *domain.Simplex
	host      ports.Host
	logger    *slog.Logger
	observers []domain.Observer
}

// Option defines a functional option for configuring a Session.
type Option func(*Session)

// WithHost injects the DCC adapter the system talks to. Without it the
// session runs on the in-memory dummy host.
func WithHost(host ports.Host) Option {
	return func(s *Session) {
		s.host = host
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithObservers registers change observers on the system.
func WithObservers(observers ...domain.Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, observers...)
	}
}

// New creates a session holding an empty system with its rest shape in
// place.
func New(name string, opts ...Option) (*Session, error) {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.host == nil {
		s.host = memory.NewHost(nil)
	}

	s.system = domain.NewSimplex(name, s.host, s.logger)
	for _, o := range s.observers {
		s.system.AddObserver(o)
	}
	if _, err := s.system.EnsureRestShape(); err != nil {
		return nil, fmt.Errorf("creating rest shape: %w", err)
	}
	return s, nil
}

// System exposes the underlying Simplex for direct graph editing.
func (s *Session) System() *domain.Simplex {
	return s.system
}

// Load replaces the session's system with the given definition JSON.
// create controls whether missing host-side shapes are created.
func (s *Session) Load(data []byte, create bool, progress func() bool) error {
	return s.system.LoadJSON(data, create, progress)
}

// Dump serializes the current system.
func (s *Session) Dump() ([]byte, error) {
	return s.system.Dump()
}

// Split runs the symmetry split and returns the detached result. The
// live system is never modified.
func (s *Session) Split(progress func() bool) (*domain.Simplex, error) {
	return s.system.Split(progress)
}

// ExportOptions configures an archive export. Faces and Counts carry the
// static mesh topology, which lives host-side and is supplied by the
// caller.
type ExportOptions struct {
	Legacy   bool
	Faces    []int
	Counts   []int
	Progress func() bool
}

// ExportArchive writes the system to an archive file: the definition
// JSON plus one vertex sample per shape, rest shape first.
func (s *Session) ExportArchive(path string, writer ports.ArchiveWriter, opts ExportOptions) error {
	definition, err := s.system.Dump()
	if err != nil {
		return err
	}

	shapes := s.system.Shapes()
	data := &ports.ArchiveData{
		Definition: definition,
		ShapeNames: make([]string, 0, len(shapes)),
		Samples:    make([][]r3.Vec, 0, len(shapes)),
		Faces:      opts.Faces,
		Counts:     opts.Counts,
		Legacy:     opts.Legacy,
	}

	for _, shape := range shapes {
		if opts.Progress != nil && !opts.Progress() {
			return domain.ErrCanceled
		}
		verts, err := shape.Verts()
		if err != nil {
			return fmt.Errorf("sampling shape %q: %w", shape.Name(), err)
		}
		data.ShapeNames = append(data.ShapeNames, shape.Name())
		data.Samples = append(data.Samples, verts)
	}

	for _, fo := range s.system.Falloffs() {
		if fo.Type() != domain.SplitMap {
			continue
		}
		weights, err := fo.Weights()
		if err != nil {
			continue // unpainted map falloffs are skipped
		}
		if data.WeightMaps == nil {
			data.WeightMaps = map[string][]float64{}
		}
		data.WeightMaps[fo.MapName()] = weights
	}

	return writer.WriteArchive(path, data)
}

// ImportArchive loads an archive file into the session: the definition
// first, then every shape's vertex sample and the weight maps.
func (s *Session) ImportArchive(path string, reader ports.ArchiveReader, progress func() bool) error {
	data, err := reader.ReadArchive(path)
	if err != nil {
		return err
	}
	if err := s.system.LoadJSON(data.Definition, true, progress); err != nil {
		return err
	}
	s.system.SetLegacy(data.Legacy)

	for i, name := range data.ShapeNames {
		if progress != nil && !progress() {
			return domain.ErrCanceled
		}
		shape := s.system.FindShape(name)
		if shape == nil {
			return fmt.Errorf("archive shape %q: %w", name, domain.ErrNotFound)
		}
		if err := shape.SetVerts(data.Samples[i]); err != nil {
			return fmt.Errorf("restoring shape %q: %w", name, err)
		}
	}

	for _, fo := range s.system.Falloffs() {
		if fo.Type() != domain.SplitMap {
			continue
		}
		if weights, ok := data.WeightMaps[fo.MapName()]; ok {
			fo.SetWeights(weights)
		}
	}
	return nil
}
