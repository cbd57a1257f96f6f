package xmlmap

import (
	"fmt"
	"strings"
)

// xmlDeclaration heads every built document.
const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// Build is the structural inverse of Parse: it emits an XML document for
// obj under the named top-level element. Attributes present in the
// object are emitted first, then child elements in the schema's declared
// order (never the object's key order), one tag per entry for array
// fields. Builder and parser share the same flattened view, which is
// what makes round trips field-for-field stable.
func Build(s *Schema, root string, obj Object) (string, error) {
	decl, _, ok := s.FindElement(root)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingElementDeclaration, root)
	}
	t, owner, err := elementType(decl, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMissingComplexType, decl.Type)
	}
	ct, ok := t.(*ComplexType)
	if !ok {
		return "", fmt.Errorf("%w: element %q is not of complex type", ErrMissingComplexType, decl.Name)
	}

	var b strings.Builder
	b.WriteString(xmlDeclaration)
	if err := writeComplex(&b, decl.Name, ct, owner, s, obj); err != nil {
		return "", err
	}
	return b.String(), nil
}

// BuildDocument builds against the schema's sole top-level element. It
// fails when the root is ambiguous; use Build with an explicit name then.
func BuildDocument(s *Schema, obj Object) (string, error) {
	if len(s.Elements) != 1 {
		return "", fmt.Errorf("%w: schema declares %d top-level elements, root must be named explicitly",
			ErrAmbiguousRoot, len(s.Elements))
	}
	return Build(s, s.Elements[0].Name, obj)
}

func writeComplex(b *strings.Builder, tag string, ct *ComplexType, owner, root *Schema, obj Object) error {
	shape, err := flattenType(ct, owner, root, make(map[string]bool))
	if err != nil {
		return err
	}

	b.WriteByte('<')
	b.WriteString(tag)
	for _, ae := range shape.Attributes {
		v, ok := obj[ae.Attr.Name]
		if !ok {
			continue
		}
		kind := KindOf(ae.Attr.Type, owner)
		b.WriteByte(' ')
		b.WriteString(ae.Attr.Name)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(formatValue(v, kind)))
		b.WriteByte('"')
	}

	var body strings.Builder
	if shape.TextType != "" {
		if v, ok := obj["value"]; ok {
			body.WriteString(textEscaper.Replace(formatValue(v, KindOf(shape.TextType, owner))))
		}
	} else {
		for _, fe := range shape.Elements {
			v, ok := obj[fe.Element.Name]
			if !ok {
				continue
			}
			if fe.Array {
				items, ok := v.([]any)
				if !ok {
					items = []any{v}
				}
				for _, item := range items {
					if err := writeField(&body, fe.Element, root, item); err != nil {
						return err
					}
				}
				continue
			}
			if err := writeField(&body, fe.Element, root, v); err != nil {
				return err
			}
		}
	}

	if body.Len() == 0 {
		b.WriteString("/>")
		return nil
	}
	b.WriteByte('>')
	b.WriteString(body.String())
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
	return nil
}

// writeField emits one tag for one value: recursing for complex types,
// coercing outward for simple ones.
func writeField(b *strings.Builder, decl *ElementDecl, root *Schema, v any) error {
	t, owner, err := elementType(decl, root)
	if err == nil {
		if ct, ok := t.(*ComplexType); ok {
			child, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("xmlmap: field %q expects a nested object, got %T", decl.Name, v)
			}
			return writeComplex(b, decl.Name, ct, owner, root, child)
		}
	}

	kind := KindOf(decl.Type, root)
	if st, ok := t.(*SimpleType); ok {
		kind = KindOf(st.Name, owner)
	}
	text := textEscaper.Replace(formatValue(v, kind))

	b.WriteByte('<')
	b.WriteString(decl.Name)
	if text == "" {
		b.WriteString("/>")
		return nil
	}
	b.WriteByte('>')
	b.WriteString(text)
	b.WriteString("</")
	b.WriteString(decl.Name)
	b.WriteByte('>')
	return nil
}
