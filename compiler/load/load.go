// Package load reads raw schema documents from a directory. One YAML
// document describes one entity. Documents come back sorted by filename
// so downstream stages never depend on filesystem enumeration order.
//
// The package is the only place untyped YAML exists: everything past it
// is the strongly typed document form below, and the parser in
// compiler/gen turns that into the validated IR.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoDocuments is returned when the schema directory exists but holds
// no schema documents.
var ErrNoDocuments = errors.New("crudgen: no schema documents")

// Error represents a schema loading failure. It always carries the path
// of the offending file or directory.
type Error struct {
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("crudgen: load error")
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new load Error.
func NewError(path, message string, cause error) *Error {
	return &Error{Path: path, Message: message, Cause: cause}
}

// IsError reports whether the error is a load Error.
func IsError(err error) bool {
	var le *Error
	return errors.As(err, &le)
}

// Schema is the raw document form of one entity, decoded but not yet
// parsed into the IR. Field order follows the YAML mapping order.
type Schema struct {
	Name       string
	Table      string
	Fields     []*Field
	Relations  []*Relation
	Timestamps *bool // nil means unset; the parser defaults it to true
	SoftDelete bool
	// Pos is the source file the document was loaded from, carried for
	// diagnostics.
	Pos string
}

// Field is one raw field declaration.
type Field struct {
	Name      string
	Type      string `yaml:"type"`
	Primary   bool   `yaml:"primary"`
	Unique    bool   `yaml:"unique"`
	Required  bool   `yaml:"required"`
	Nullable  *bool  `yaml:"nullable"`
	Default   any    `yaml:"default"`
	MaxLength *int   `yaml:"max_length"`
	Index     bool   `yaml:"index"`
}

// Relation is one raw relation declaration. Targets are plain names
// here; resolution against the full entity set happens after parsing.
type Relation struct {
	Type          string `yaml:"type"`
	Target        string `yaml:"target"`
	ForeignKey    string `yaml:"foreign_key"`
	BackPopulates string `yaml:"back_populates"`
}

// document mirrors the top-level YAML shape. Fields stays a yaml.Node so
// the declaration order of the mapping survives decoding.
type document struct {
	Name       string      `yaml:"name"`
	Table      string      `yaml:"table"`
	Fields     yaml.Node   `yaml:"fields"`
	Relations  []*Relation `yaml:"relations"`
	Timestamps *bool       `yaml:"timestamps"`
	SoftDelete bool        `yaml:"soft_delete"`
}

// Load reads every *.yaml / *.yml file under dir (non-recursive), one
// entity document per file, and returns them sorted by base filename.
func Load(dir string) ([]*Schema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, NewError(dir, "reading schema directory", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, NewError(dir, "no schema documents found", ErrNoDocuments)
	}
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})

	schemas := make([]*Schema, 0, len(paths))
	for _, p := range paths {
		s, err := loadFile(p)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// loadFile decodes one schema document.
func loadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(path, "reading schema document", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, NewError(path, "document is empty", nil)
		}
		return nil, NewError(path, "document is not a valid schema mapping", err)
	}
	if doc.Name == "" {
		return nil, NewError(path, "document lacks the required name key", nil)
	}

	s := &Schema{
		Name:       doc.Name,
		Table:      doc.Table,
		Relations:  doc.Relations,
		Timestamps: doc.Timestamps,
		SoftDelete: doc.SoftDelete,
		Pos:        path,
	}
	fields, err := decodeFields(path, &doc.Fields)
	if err != nil {
		return nil, err
	}
	s.Fields = fields
	return s, nil
}

// decodeFields walks the fields mapping node in declaration order.
func decodeFields(path string, node *yaml.Node) ([]*Field, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, NewError(path, "fields must be a mapping of name to field config", nil)
	}
	// Mapping nodes interleave key and value nodes.
	fields := make([]*Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		f := &Field{Name: key.Value}
		if err := val.Decode(f); err != nil {
			return nil, NewError(path, fmt.Sprintf("field %q has a malformed config", key.Value), err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}
