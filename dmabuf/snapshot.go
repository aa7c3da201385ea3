package dmabuf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/egl"
)

// Snapshot is a recorded driver report. It lets a capability pass be
// replayed away from the machine it was recorded on.
type Snapshot struct {
	Device string `yaml:"device,omitempty"`
	Driver string `yaml:"driver,omitempty"`

	Import          bool `yaml:"dmabuf_import"`
	ImportModifiers bool `yaml:"dmabuf_import_modifiers"`

	// FormatsError is set when the format list query failed.
	FormatsError string           `yaml:"formats_error,omitempty"`
	Formats      []SnapshotFormat `yaml:"formats,omitempty"`

	EGL egl.Strings `yaml:"egl,omitempty"`
}

// SnapshotFormat is the modifier query result of one format.
type SnapshotFormat struct {
	Format    drm.Format `yaml:"format"`
	Error     string     `yaml:"error,omitempty"`
	Modifiers []Modifier `yaml:"modifiers,omitempty"`
}

// Record asks q everything a capability pass would and stores the answers,
// including failures.
func Record(q Querier) *Snapshot {
	s := &Snapshot{}
	s.Import, s.ImportModifiers = q.Capability()
	if !s.Import || !s.ImportModifiers {
		return s
	}

	list, err := q.Formats()
	if err != nil {
		s.FormatsError = err.Error()
		return s
	}
	for _, f := range list {
		sf := SnapshotFormat{Format: f}
		mods, err := q.Modifiers(f)
		if err != nil {
			sf.Error = err.Error()
		}
		sf.Modifiers = mods
		s.Formats = append(s.Formats, sf)
	}
	return s
}

func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Snapshot) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

func (s *Snapshot) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return f.Close()
}

// SnapshotQuerier replays a Snapshot.
type SnapshotQuerier struct {
	snapshot *Snapshot
	logger   *slog.Logger
}

func NewSnapshotQuerier(s *Snapshot, logger *slog.Logger) *SnapshotQuerier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotQuerier{snapshot: s, logger: logger}
}

// Capability reports the recorded flags. When the snapshot also holds the
// EGL display extensions, import additionally needs
// EGL_EXT_image_dma_buf_import and explicit modifiers need
// EGL_EXT_image_dma_buf_import_modifiers.
func (q *SnapshotQuerier) Capability() (bool, bool) {
	imp, modifiers := q.snapshot.Import, q.snapshot.ImportModifiers
	if q.snapshot.EGL.Display != "" {
		// only the import flags matter here, not the context requirements
		d, _ := egl.CheckDisplay(egl.ParseExtensions(q.snapshot.EGL.Display))
		imp = imp && d.DmaBufImport
		modifiers = modifiers && d.DmaBufImportModifiers
	}
	return imp, modifiers
}

func (q *SnapshotQuerier) Formats() ([]drm.Format, error) {
	if q.snapshot.FormatsError != "" {
		return nil, errors.New(q.snapshot.FormatsError)
	}
	list := make([]drm.Format, len(q.snapshot.Formats))
	for i, f := range q.snapshot.Formats {
		list[i] = f.Format
	}
	return list, nil
}

func (q *SnapshotQuerier) Modifiers(format drm.Format) ([]Modifier, error) {
	for _, f := range q.snapshot.Formats {
		if f.Format != format {
			continue
		}
		if f.Error != "" {
			return nil, errors.New(f.Error)
		}
		q.logger.Debug("Replaying modifiers", "format", format, "count", len(f.Modifiers))
		return append([]Modifier(nil), f.Modifiers...), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}
