package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"nexterror/types"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// entry is one diagnostic as written in a snapshot file.
// Lines and columns are 1-indexed; a missing column means column 1.
type entry struct {
	File     string `toml:"file" json:"file" msgpack:"file"`
	Line     int    `toml:"line" json:"line" msgpack:"line"`
	Column   int    `toml:"column" json:"column,omitempty" msgpack:"column,omitempty"`
	Severity string `toml:"severity" json:"severity" msgpack:"severity"`
	Message  string `toml:"message" json:"message,omitempty" msgpack:"message,omitempty"`
	Source   string `toml:"source" json:"source,omitempty" msgpack:"source,omitempty"`
}

type tomlFile struct {
	Diagnostic []entry `toml:"diagnostic"`
}

type listFile struct {
	Diagnostics []entry `json:"diagnostics" msgpack:"diagnostics"`
}

// Snapshot is a fixed set of diagnostics loaded from disk, for example the
// output of a CI lint run. It implements Source.
type Snapshot struct {
	name  string
	byDoc map[types.DocumentID][]types.Diagnostic
}

// NewSnapshot groups diags by document, keeping their order
func NewSnapshot(name string, diags []types.Diagnostic) *Snapshot {
	s := &Snapshot{name: name, byDoc: make(map[types.DocumentID][]types.Diagnostic)}
	for _, d := range diags {
		s.byDoc[d.Document] = append(s.byDoc[d.Document], d)
	}
	return s
}

// LoadSnapshot reads a .toml, .json or .msgpack snapshot. Relative file names
// are resolved against baseDir, or the snapshot's directory when baseDir is empty.
func LoadSnapshot(path, baseDir string) (*Snapshot, error) {
	var entries []entry

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		var f tomlFile
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		entries = f.Diagnostic
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var f listFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		entries = f.Diagnostics
	case ".msgpack", ".mpk":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		var f listFile
		if err := msgpack.NewDecoder(file).Decode(&f); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		entries = f.Diagnostics
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}

	diags := make([]types.Diagnostic, 0, len(entries))
	for i, e := range entries {
		d, err := e.diagnostic(baseDir)
		if err != nil {
			return nil, fmt.Errorf("%s: diagnostic %d: %w", path, i+1, err)
		}
		diags = append(diags, d)
	}

	return NewSnapshot(filepath.Base(path), diags), nil
}

func (e entry) diagnostic(baseDir string) (types.Diagnostic, error) {
	if e.File == "" {
		return types.Diagnostic{}, errors.New("missing file")
	}
	if e.Line < 1 {
		return types.Diagnostic{}, fmt.Errorf("line %d out of range", e.Line)
	}
	if e.Column < 0 {
		return types.Diagnostic{}, fmt.Errorf("column %d out of range", e.Column)
	}
	sev, err := types.ParseSeverity(e.Severity)
	if err != nil {
		return types.Diagnostic{}, err
	}

	file := e.File
	if !filepath.IsAbs(file) {
		file = filepath.Join(baseDir, file)
	}

	return types.Diagnostic{
		Document: types.DocumentID(filepath.Clean(file)),
		Position: types.Position{Line: e.Line - 1, Column: max(e.Column-1, 0)},
		Severity: sev,
		Message:  e.Message,
		Source:   e.Source,
	}, nil
}

func (s *Snapshot) Name() string { return s.name }

// Documents returns the documents with diagnostics, sorted
func (s *Snapshot) Documents() []types.DocumentID {
	docs := make([]types.DocumentID, 0, len(s.byDoc))
	for doc := range s.byDoc {
		docs = append(docs, doc)
	}
	slices.Sort(docs)
	return docs
}

func (s *Snapshot) Len() int {
	n := 0
	for _, diags := range s.byDoc {
		n += len(diags)
	}
	return n
}

func (s *Snapshot) Diagnostics(_ context.Context, doc types.DocumentID) ([]types.Diagnostic, error) {
	return slices.Clone(s.byDoc[doc]), nil
}

func (s *Snapshot) AllDiagnostics(_ context.Context) (map[types.DocumentID][]types.Diagnostic, error) {
	all := make(map[types.DocumentID][]types.Diagnostic, len(s.byDoc))
	for doc, diags := range s.byDoc {
		all[doc] = slices.Clone(diags)
	}
	return all, nil
}
