// Package catalog holds the known export schemas: which artifact a file
// represents and which header label carries each field of each record slot.
//
// The tables are built once from embedded data and never modified. Callers
// use the ArtifactLookup and FieldLookup interfaces so the storage behind
// them can change without touching call sites.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed artifacts.yaml
var artifactsYAML []byte

var (
	// ErrDuplicateCode is returned when two catalog rows share a FieldCode.
	ErrDuplicateCode = errors.New("duplicate field code")

	// ErrDuplicateArtifact is returned when two artifacts share a name or ID.
	ErrDuplicateArtifact = errors.New("duplicate artifact")
)

// Artifact describes one recognized export schema.
type Artifact struct {
	Name     string     `yaml:"name"`
	ID       ArtifactID `yaml:"id"`
	Short    string     `yaml:"short"`
	Category string     `yaml:"category"`
}

// Field is one row of the field catalog: the exact header label an export
// uses for a field, and the code it resolves.
type Field struct {
	Label string
	Code  FieldCode
}

// ArtifactLookup identifies artifacts and returns their display tags.
type ArtifactLookup interface {
	Identify(name string) (ArtifactID, bool)
	ShortTag(id ArtifactID) string
	CategoryTag(id ArtifactID) string
}

// FieldLookup resolves a field code to the header label that carries it.
// A missing label is normal; most artifacts fill only a few roles.
type FieldLookup interface {
	LabelFor(code FieldCode) (string, bool)
}

// Catalog implements ArtifactLookup and FieldLookup over maps.
type Catalog struct {
	artifacts []Artifact
	byName    map[string]int
	byID      map[ArtifactID]int
	fields    []Field
	labels    map[FieldCode]string
}

type document struct {
	Artifacts []struct {
		Artifact `yaml:",inline"`
		Fields   []struct {
			Label string `yaml:"label"`
			Slot  Slot   `yaml:"slot"`
			Role  Role   `yaml:"role"`
		} `yaml:"fields"`
	} `yaml:"artifacts"`
}

// defaultCatalog is built on first use so the slot and role name tables
// are populated before the embedded data is decoded.
var defaultCatalog = sync.OnceValue(func() *Catalog {
	return mustLoad(artifactsYAML)
})

// Default returns the catalog built from the embedded schema data. Every
// call returns the same catalog.
func Default() *Catalog {
	return defaultCatalog()
}

func mustLoad(data []byte) *Catalog {
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data: %v", err))
	}
	return c
}

// Load parses a catalog document. It rejects duplicate artifact names, IDs
// and field codes.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	c := &Catalog{
		byName: make(map[string]int, len(doc.Artifacts)),
		byID:   make(map[ArtifactID]int, len(doc.Artifacts)),
		labels: make(map[FieldCode]string),
	}

	for _, a := range doc.Artifacts {
		if a.Name == "" || a.ID <= 0 {
			return nil, fmt.Errorf("artifact %q: name and positive id required", a.Name)
		}
		if _, dup := c.byName[a.Name]; dup {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicateArtifact, a.Name)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("%w: id %d (%s)", ErrDuplicateArtifact, a.ID, a.Name)
		}
		c.byName[a.Name] = len(c.artifacts)
		c.byID[a.ID] = len(c.artifacts)
		c.artifacts = append(c.artifacts, a.Artifact)

		for _, f := range a.Fields {
			code := Code(a.ID, f.Slot, f.Role)
			if prev, dup := c.labels[code]; dup {
				return nil, fmt.Errorf("%w: %s (%s) has %q and %q", ErrDuplicateCode, code, a.Name, prev, f.Label)
			}
			c.labels[code] = f.Label
			c.fields = append(c.fields, Field{Label: f.Label, Code: code})
		}
	}

	return c, nil
}

// Identify returns the ID of the artifact with the given display name.
func (c *Catalog) Identify(name string) (ArtifactID, bool) {
	i, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	return c.artifacts[i].ID, true
}

// Artifact returns the artifact with the given ID.
func (c *Catalog) Artifact(id ArtifactID) (Artifact, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Artifact{}, false
	}
	return c.artifacts[i], true
}

// ShortTag returns the artifact's source tag, such as "chrome", or "".
func (c *Catalog) ShortTag(id ArtifactID) string {
	a, _ := c.Artifact(id)
	return a.Short
}

// CategoryTag returns the artifact's event category, such as "history", or "".
func (c *Catalog) CategoryTag(id ArtifactID) string {
	a, _ := c.Artifact(id)
	return a.Category
}

// LabelFor returns the header label that carries code.
func (c *Catalog) LabelFor(code FieldCode) (string, bool) {
	label, ok := c.labels[code]
	return label, ok
}

// Artifacts returns every artifact in catalog order.
func (c *Catalog) Artifacts() []Artifact {
	out := make([]Artifact, len(c.artifacts))
	copy(out, c.artifacts)
	return out
}

// Fields returns the catalog rows for one artifact.
func (c *Catalog) Fields(id ArtifactID) []Field {
	var out []Field
	for _, f := range c.fields {
		if f.Code.Artifact == id {
			out = append(out, f)
		}
	}
	return out
}
