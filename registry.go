package xmlmap

import (
	"fmt"
	"strings"
)

// Name resolution over a schema and its transitive includes. Lookups
// search the schema's own declarations first, then each included schema
// depth-first in declaration order; the first match wins. Definitions
// are returned together with the schema that owns them, because members
// inherited from a base type must be resolved relative to the base's own
// schema, not the derived type's.

// FindType resolves a type name to its complex- or simple-type
// definition and owning schema. The name may carry a namespace prefix;
// only the local part is compared. Fails with ErrTypeNotFound.
func (s *Schema) FindType(name string) (Type, *Schema, error) {
	local := localPart(name)
	if t, owner := s.findType(local, make(map[*Schema]bool)); t != nil {
		return t, owner, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrTypeNotFound, name)
}

func (s *Schema) findType(local string, seen map[*Schema]bool) (Type, *Schema) {
	if seen[s] {
		return nil, nil
	}
	seen[s] = true

	for _, ct := range s.ComplexTypes {
		if ct.Name == local {
			return ct, s
		}
	}
	for _, st := range s.SimpleTypes {
		if st.Name == local {
			return st, s
		}
	}
	for _, inc := range s.Includes {
		if t, owner := inc.findType(local, seen); t != nil {
			return t, owner
		}
	}
	return nil, nil
}

// FindGroup resolves a named group reference. Fails with ErrGroupNotFound.
func (s *Schema) FindGroup(name string) (*ModelGroup, *Schema, error) {
	local := localPart(name)
	if g, owner := s.findGroup(local, make(map[*Schema]bool)); g != nil {
		return g, owner, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrGroupNotFound, name)
}

func (s *Schema) findGroup(local string, seen map[*Schema]bool) (*ModelGroup, *Schema) {
	if seen[s] {
		return nil, nil
	}
	seen[s] = true

	for _, g := range s.Groups {
		if g.Name == local {
			return g.Group, s
		}
	}
	for _, inc := range s.Includes {
		if g, owner := inc.findGroup(local, seen); g != nil {
			return g, owner
		}
	}
	return nil, nil
}

// FindAttributeGroup resolves a named attribute-group reference.
// Fails with ErrAttributeGroupNotFound.
func (s *Schema) FindAttributeGroup(name string) (*AttributeGroup, *Schema, error) {
	local := localPart(name)
	if ag, owner := s.findAttributeGroup(local, make(map[*Schema]bool)); ag != nil {
		return ag, owner, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrAttributeGroupNotFound, name)
}

func (s *Schema) findAttributeGroup(local string, seen map[*Schema]bool) (*AttributeGroup, *Schema) {
	if seen[s] {
		return nil, nil
	}
	seen[s] = true

	for _, ag := range s.AttributeGroups {
		if ag.Name == local {
			return ag, s
		}
	}
	for _, inc := range s.Includes {
		if ag, owner := inc.findAttributeGroup(local, seen); ag != nil {
			return ag, owner
		}
	}
	return nil, nil
}

// FindElement resolves a top-level element declaration by local name.
// Matching is case-insensitive, so document root tags map onto
// declarations regardless of casing conventions.
func (s *Schema) FindElement(name string) (*ElementDecl, *Schema, bool) {
	local := localPart(name)
	decl, owner := s.findElement(local, make(map[*Schema]bool))
	return decl, owner, decl != nil
}

func (s *Schema) findElement(local string, seen map[*Schema]bool) (*ElementDecl, *Schema) {
	if seen[s] {
		return nil, nil
	}
	seen[s] = true

	for _, e := range s.Elements {
		if strings.EqualFold(e.Name, local) {
			return e, s
		}
	}
	for _, inc := range s.Includes {
		if e, owner := inc.findElement(local, seen); e != nil {
			return e, owner
		}
	}
	return nil, nil
}

// FindSubstitutes returns every top-level element whose substitutionGroup
// points at the given head element, in schema declaration order (the
// schema's own declarations before its includes').
func (s *Schema) FindSubstitutes(head string) []*ElementDecl {
	local := localPart(head)
	var subs []*ElementDecl
	s.collectSubstitutes(local, make(map[*Schema]bool), &subs)
	return subs
}

func (s *Schema) collectSubstitutes(head string, seen map[*Schema]bool, out *[]*ElementDecl) {
	if seen[s] {
		return
	}
	seen[s] = true

	for _, e := range s.Elements {
		if e.SubstitutionGroup != "" && strings.EqualFold(localPart(e.SubstitutionGroup), head) {
			*out = append(*out, e)
		}
	}
	for _, inc := range s.Includes {
		inc.collectSubstitutes(head, seen, out)
	}
}

// localPart strips a namespace prefix from a possibly qualified name.
// Name matching throughout the engine compares local names only.
func localPart(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
