package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ManifestName is the per-run record written next to model artifacts.
// Each line holds an entity name and the fingerprint of its IR, so
// external tooling (the migration driver in particular) can tell which
// entities changed between runs without diffing generated source.
const ManifestName = ".crudgen.manifest"

// fingerprint is the reduced, stable form of an entity that feeds the
// digest. Struct fields encode in declaration order, which makes the
// msgpack payload a pure function of the IR.
type fingerprint struct {
	Name       string
	Table      string
	Timestamps bool
	SoftDelete bool
	Fields     []fieldPrint
	Relations  []relationPrint
}

type fieldPrint struct {
	Name      string
	Type      string
	Primary   bool
	Unique    bool
	Required  bool
	Nillable  bool
	Index     bool
	Default   string
	MaxLength int
}

type relationPrint struct {
	Kind          string
	Target        string
	ForeignKey    string
	BackPopulates string
}

// Fingerprint returns the hex digest of the entity's IR. Identical IR
// always yields the identical fingerprint.
func Fingerprint(e *Entity) (string, error) {
	fp := fingerprint{
		Name:       e.Name,
		Table:      e.Table,
		Timestamps: e.Timestamps,
		SoftDelete: e.SoftDelete,
	}
	for _, f := range e.Fields {
		p := fieldPrint{
			Name:     f.Name,
			Type:     f.Type.String(),
			Primary:  f.Primary,
			Unique:   f.Unique,
			Required: f.Required,
			Nillable: f.Nillable,
			Index:    f.Index,
		}
		if f.HasDefault {
			p.Default = fmt.Sprintf("%v", f.Default)
		}
		if f.MaxLength != nil {
			p.MaxLength = *f.MaxLength
		}
		fp.Fields = append(fp.Fields, p)
	}
	for _, r := range e.Relations {
		fp.Relations = append(fp.Relations, relationPrint{
			Kind:          r.Kind.String(),
			Target:        r.Target,
			ForeignKey:    r.ForeignKey,
			BackPopulates: r.BackPopulates,
		})
	}
	raw, err := msgpack.Marshal(&fp)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// writeManifest flushes the manifest into the model target, entities
// sorted by name.
func (g *Generator) writeManifest() error {
	entities := make([]*Entity, len(g.graph.Entities))
	copy(entities, g.graph.Entities)
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Name < entities[j].Name
	})

	var b strings.Builder
	for _, e := range entities {
		fp, err := Fingerprint(e)
		if err != nil {
			return NewGenerationError("manifest", ManifestName, "fingerprinting entity "+e.Name, err)
		}
		fmt.Fprintf(&b, "%s\t%s\n", e.Name, fp)
	}
	path := filepath.Join(g.graph.ModelTarget, ManifestName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return NewGenerationError("manifest", ManifestName, "writing manifest", err)
	}
	return nil
}
