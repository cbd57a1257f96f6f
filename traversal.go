package xmlmap

import "fmt"

// The traversal engine flattens a complex type's content model into the
// effective, ordered list of elements and attributes an instance of that
// type carries, fully resolving inheritance, group indirection,
// occurrence propagation and abstract-element substitution. Both the
// parser and the builder consume the same flattened view, which is what
// guarantees they agree on the set and order of fields.

// Source records how a flattened element entry came to be.
type Source int

const (
	// SourceDeclared entries come straight from the content model.
	SourceDeclared Source = iota
	// SourceSubstitution entries replace an abstract element with one of
	// its substitution-group members.
	SourceSubstitution
	// SourceAbstract entries are abstract elements with no local
	// substitutes, yielded unresolved so a caller with broader schema
	// context can resolve them.
	SourceAbstract
)

// FieldEntry is one effective child element of a flattened type.
// Optional and Array are the logical OR of the element's own occurrence
// range and every enclosing group or reference on the way down.
type FieldEntry struct {
	Element  *ElementDecl
	Optional bool
	Array    bool
	Source   Source
}

// AttrEntry is one effective attribute of a flattened type.
type AttrEntry struct {
	Attr     *AttributeDecl
	Required bool
}

// TypeShape is the flattened view of a complex type. For simple-content
// types TextType names the simple base type the element text coerces
// through; it is empty for element-only content.
type TypeShape struct {
	Elements   []FieldEntry
	Attributes []AttrEntry
	TextType   string
}

// Flatten resolves ct's content model against s (the resolution root:
// substitution groups are looked up here, names are resolved through s
// and its includes). Flattening is a pure function of (type, schema);
// cyclic inheritance fails with ErrCyclicInheritance.
func Flatten(ct *ComplexType, s *Schema) (*TypeShape, error) {
	return flattenType(ct, s, s, make(map[string]bool))
}

// flattenType resolves names relative to owner (the schema that declared
// ct) while keeping root for substitution lookup, so cross-schema
// inheritance resolves base members in the base's own schema.
func flattenType(ct *ComplexType, owner, root *Schema, seen map[string]bool) (*TypeShape, error) {
	if ct.Name != "" {
		if seen[ct.Name] {
			return nil, fmt.Errorf("%w: %q", ErrCyclicInheritance, ct.Name)
		}
		seen[ct.Name] = true
	}

	shape := &TypeShape{}

	switch {
	case ct.Extension != nil:
		ext := ct.Extension
		base, baseOwner, err := owner.FindType(ext.Base)
		if err == nil {
			if baseCT, ok := base.(*ComplexType); ok {
				baseShape, err := flattenType(baseCT, baseOwner, root, seen)
				if err != nil {
					return nil, err
				}
				shape.Elements = append(shape.Elements, baseShape.Elements...)
				shape.Attributes = append(shape.Attributes, baseShape.Attributes...)
				shape.TextType = baseShape.TextType
			} else if ext.SimpleContent {
				shape.TextType = base.TypeName()
			}
		} else if ext.SimpleContent {
			// Base is a builtin simple type, not declared in the schema.
			shape.TextType = localPart(ext.Base)
		} else {
			return nil, err
		}
		if ext.Content != nil {
			if err := shape.walkParticle(ext.Content, owner, root, false, false); err != nil {
				return nil, err
			}
		}
		if err := shape.addAttributes(ext.Attributes, ext.AttributeGroups, owner); err != nil {
			return nil, err
		}

	case ct.Restriction != nil:
		// Restriction replaces rather than appends: only the restriction's
		// own declared members are used, the base is not merged.
		res := ct.Restriction
		if res.SimpleContent {
			shape.TextType = localPart(res.Base)
		}
		if res.Content != nil {
			if err := shape.walkParticle(res.Content, owner, root, false, false); err != nil {
				return nil, err
			}
		}
		if err := shape.addAttributes(res.Attributes, res.AttributeGroups, owner); err != nil {
			return nil, err
		}

	default:
		if ct.Content != nil {
			if err := shape.walkParticle(ct.Content, owner, root, false, false); err != nil {
				return nil, err
			}
		}
	}

	if err := shape.addAttributes(ct.Attributes, ct.AttributeGroups, owner); err != nil {
		return nil, err
	}
	return shape, nil
}

// walkParticle accumulates effective element entries. optional and array
// carry the OR of every enclosing level; choice children are optional
// because only one branch of a choice is ever present.
func (sh *TypeShape) walkParticle(p Particle, owner, root *Schema, optional, array bool) error {
	switch t := p.(type) {
	case *ModelGroup:
		opt := optional || t.MinOccurs() == 0
		arr := array || isMany(t.MaxOccurs())
		childOpt := opt || t.Kind == ChoiceGroup
		for _, child := range t.Particles {
			if err := sh.walkParticle(child, owner, root, childOpt, arr); err != nil {
				return err
			}
		}

	case *GroupRef:
		group, groupOwner, err := owner.FindGroup(t.Ref)
		if err != nil {
			return err
		}
		opt := optional || t.MinOccurs() == 0
		arr := array || isMany(t.MaxOccurs())
		return sh.walkParticle(group, groupOwner, root, opt, arr)

	case *ElementDecl:
		opt := optional || t.MinOccurs() == 0
		arr := array || isMany(t.MaxOccurs())
		sh.addElement(t, opt, arr, root)

	case *ElementRef:
		decl, _, ok := owner.FindElement(t.Ref)
		if !ok {
			return fmt.Errorf("%w: element reference %q", ErrMissingElementDeclaration, t.Ref)
		}
		opt := optional || t.MinOccurs() == 0
		arr := array || isMany(t.MaxOccurs())
		sh.addElement(decl, opt, arr, root)

	case *Wildcard:
		// Wildcard content is unmapped; unknown document content is ignored.
	}
	return nil
}

// addElement yields decl, or its substitution-group members when decl is
// abstract and substitutes exist in the resolution root. With no local
// substitutes the abstract entry is kept as-is so a broader schema can
// still resolve it.
func (sh *TypeShape) addElement(decl *ElementDecl, optional, array bool, root *Schema) {
	if decl.Abstract {
		if subs := root.FindSubstitutes(decl.Name); len(subs) > 0 {
			for _, sub := range subs {
				// Substitutes are alternatives for one slot, so each is
				// individually optional.
				sh.Elements = append(sh.Elements, FieldEntry{
					Element:  sub,
					Optional: true,
					Array:    array,
					Source:   SourceSubstitution,
				})
			}
			return
		}
		sh.Elements = append(sh.Elements, FieldEntry{Element: decl, Optional: optional, Array: array, Source: SourceAbstract})
		return
	}
	sh.Elements = append(sh.Elements, FieldEntry{Element: decl, Optional: optional, Array: array, Source: SourceDeclared})
}

func (sh *TypeShape) addAttributes(attrs []*AttributeDecl, groupRefs []string, owner *Schema) error {
	for _, a := range attrs {
		sh.Attributes = append(sh.Attributes, AttrEntry{Attr: a, Required: a.Required})
	}
	for _, ref := range groupRefs {
		ag, _, err := owner.FindAttributeGroup(ref)
		if err != nil {
			return err
		}
		for _, a := range ag.Attributes {
			sh.Attributes = append(sh.Attributes, AttrEntry{Attr: a, Required: a.Required})
		}
	}
	return nil
}

// elementType resolves an element declaration's type: the inline type if
// present, otherwise the named type looked up from s. Untyped elements
// resolve to nil and are treated as strings.
func elementType(decl *ElementDecl, s *Schema) (Type, *Schema, error) {
	if decl.Inline != nil {
		return decl.Inline, s, nil
	}
	if decl.Type == "" {
		return nil, s, nil
	}
	t, owner, err := s.FindType(decl.Type)
	if err != nil {
		return nil, nil, err
	}
	return t, owner, nil
}
