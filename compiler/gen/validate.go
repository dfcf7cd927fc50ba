package gen

import (
	"fmt"
	"strings"
)

// validate runs the two validation phases over the complete graph and
// accumulates every diagnostic; it never stops at the first problem. A
// graph with any diagnostic fails as a whole and no artifact is written.
func (g *Graph) validate() error {
	var errs ValidationErrors

	// Phase one: per-entity invariants.
	for _, e := range g.Entities {
		if prev := g.entities[e.Name]; prev != nil {
			errs = append(errs, &ValidationError{
				Entity:  e.Name,
				Message: "entity name is declared more than once in the schema set",
			})
			continue
		}
		g.entities[e.Name] = e
		errs = append(errs, e.validate()...)
	}

	// Phase two: cross-entity resolution against the complete set.
	for _, e := range g.Entities {
		errs = append(errs, g.resolve(e)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validate checks the invariants local to one entity.
func (e *Entity) validate() ValidationErrors {
	var errs ValidationErrors

	seen := make(map[string]bool, len(e.Fields))
	var primaries []*Field
	for _, f := range e.Fields {
		if seen[f.Name] {
			errs = append(errs, &ValidationError{
				Entity:  e.Name,
				Field:   f.Name,
				Message: "field name is declared more than once",
			})
		}
		seen[f.Name] = true
		if f.Primary {
			primaries = append(primaries, f)
		}
		if f.Required && f.Nillable {
			errs = append(errs, &ValidationError{
				Entity:  e.Name,
				Field:   f.Name,
				Message: "field cannot be both required and nullable",
			})
		}
		if f.MaxLength != nil && !f.Type.Stringy() {
			errs = append(errs, &ValidationError{
				Entity:  e.Name,
				Field:   f.Name,
				Message: fmt.Sprintf("max_length is not applicable to type %s", f.Type),
			})
		}
		if f.HasDefault && !f.Type.CompatibleDefault(f.Default) {
			errs = append(errs, &ValidationError{
				Entity:  e.Name,
				Field:   f.Name,
				Message: fmt.Sprintf("default value %v is not compatible with type %s", f.Default, f.Type),
			})
		}
		if (f.Unique || f.Index) && !f.Type.Indexable() {
			errs = append(errs, &ValidationError{
				Entity:  e.Name,
				Field:   f.Name,
				Message: fmt.Sprintf("type %s cannot carry a unique or index constraint", f.Type),
			})
		}
	}

	switch len(primaries) {
	case 0:
		errs = append(errs, &ValidationError{
			Entity:  e.Name,
			Message: "entity declares no primary field; exactly one is required",
		})
	case 1:
		e.ID = primaries[0]
	default:
		names := make([]string, len(primaries))
		for i, f := range primaries {
			names[i] = f.Name
		}
		errs = append(errs, &ValidationError{
			Entity:  e.Name,
			Message: fmt.Sprintf("entity declares %d primary fields (%s); exactly one is required", len(primaries), strings.Join(names, ", ")),
		})
	}
	return errs
}

// resolve binds relation targets against the complete entity set and
// checks the invariants that need the resolved side.
func (g *Graph) resolve(e *Entity) ValidationErrors {
	var errs ValidationErrors
	for _, r := range e.Relations {
		target := g.entities[r.Target]
		if target == nil {
			errs = append(errs, &ValidationError{
				Entity:   e.Name,
				Relation: r.Kind.String(),
				Target:   r.Target,
				Message:  "relation target is not defined in the schema set",
			})
			continue
		}
		r.Type = target
		if r.Kind == M2O && r.ForeignKey == "" && target.ID == nil {
			// The target failed its own primary invariant, so there is
			// no implicit foreign key to borrow.
			errs = append(errs, &ValidationError{
				Entity:   e.Name,
				Relation: r.Kind.String(),
				Target:   r.Target,
				Message:  "relation needs a resolvable foreign key: none declared and the target has no usable primary field",
			})
		}
		// back_populates is recorded for emission only; symmetry on the
		// target entity is deliberately not enforced.
	}
	return errs
}
