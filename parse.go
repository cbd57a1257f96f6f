package xmlmap

import (
	"fmt"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// Object is the canonical in-memory form of a parsed document: a flat
// mapping from field name to value per type, with attributes and child
// elements merged into one namespace. Values are strings, numbers,
// booleans, date text, nested Objects, or []any sequences. An Object
// holds no back-reference to the schema it was parsed with.
type Object = map[string]any

// xmlnsNamespace is how the DOM reports namespace-declaration attributes,
// which the mapper skips.
const xmlnsNamespace = "http://www.w3.org/2000/xmlns/"

// Parse maps a UTF-8 XML document onto a canonical object using the
// schema to resolve names, cardinalities and type coercions. A leading
// XML declaration is discarded. Matching is namespace-prefix-insensitive
// throughout: only local names are compared.
func Parse(s *Schema, data []byte) (Object, error) {
	decoder := xmldom.NewDecoderFromBytes(data)
	doc, err := decoder.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingRootElement, err)
	}
	return ParseDocument(s, doc)
}

// ParseDocument is Parse for an already-decoded DOM document.
func ParseDocument(s *Schema, doc xmldom.Document) (Object, error) {
	if doc == nil {
		return nil, ErrMissingRootElement
	}
	root := doc.DocumentElement()
	if root == nil {
		return nil, ErrMissingRootElement
	}

	local := string(root.LocalName())
	decl, _, ok := s.FindElement(local)
	if !ok {
		return nil, fmt.Errorf("%w: root tag %q", ErrMissingElementDeclaration, local)
	}

	t, owner, err := elementType(decl, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingComplexType, decl.Type)
	}
	ct, ok := t.(*ComplexType)
	if !ok {
		return nil, fmt.Errorf("%w: element %q is not of complex type", ErrMissingComplexType, decl.Name)
	}
	return parseComplex(ct, owner, s, root)
}

// parseComplex maps one element onto an Object following the flattened
// view of its type. Document content not described by the schema is
// silently ignored.
func parseComplex(ct *ComplexType, owner, root *Schema, elem xmldom.Element) (Object, error) {
	shape, err := flattenType(ct, owner, root, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	obj := make(Object)

	// Attributes are matched by local name regardless of the prefix used
	// in the document. Defaults apply only when the attribute is absent.
	present := make(map[string]string)
	attrs := elem.Attributes()
	for i := uint(0); i < attrs.Length(); i++ {
		attr := attrs.Item(i)
		if attr == nil {
			continue
		}
		local := string(attr.LocalName())
		ns := string(attr.NamespaceURI())
		if ns == xmlnsNamespace || ns == "xmlns" || local == "xmlns" {
			continue
		}
		present[strings.ToLower(local)] = string(attr.NodeValue())
	}
	for _, ae := range shape.Attributes {
		kind := KindOf(ae.Attr.Type, owner)
		if raw, ok := present[strings.ToLower(ae.Attr.Name)]; ok {
			obj[ae.Attr.Name] = coerce(raw, kind)
		} else if ae.Attr.Default != "" {
			obj[ae.Attr.Name] = coerce(ae.Attr.Default, kind)
		}
	}

	// Simple content: the element text is the single "value" field.
	if shape.TextType != "" {
		obj["value"] = coerce(string(elem.TextContent()), KindOf(shape.TextType, owner))
		return obj, nil
	}

	children := elem.Children()
	for _, fe := range shape.Elements {
		name := fe.Element.Name

		var matches []xmldom.Element
		for i := uint(0); i < children.Length(); i++ {
			child := children.Item(i)
			if child == nil {
				continue
			}
			if strings.EqualFold(string(child.LocalName()), name) {
				matches = append(matches, child)
			}
		}

		if fe.Array {
			// Array fields always parse to a sequence, even for zero or
			// one occurrence.
			vals := make([]any, 0, len(matches))
			for _, m := range matches {
				v, err := parseValue(fe.Element, root, m)
				if err != nil {
					return nil, err
				}
				vals = append(vals, v)
			}
			obj[name] = vals
			continue
		}

		if len(matches) == 0 {
			// Absent optional elements yield no field at all.
			continue
		}
		v, err := parseValue(fe.Element, root, matches[0])
		if err != nil {
			return nil, err
		}
		obj[name] = v
	}

	return obj, nil
}

// parseValue parses a single occurrence of an element: recursing for
// complex types, coercing text for simple ones. An element whose named
// type is declared nowhere coerces through the builtin table, which
// defaults to string.
func parseValue(decl *ElementDecl, root *Schema, elem xmldom.Element) (any, error) {
	t, owner, err := elementType(decl, root)
	if err != nil {
		return coerce(string(elem.TextContent()), KindOf(decl.Type, nil)), nil
	}
	switch tt := t.(type) {
	case *ComplexType:
		return parseComplex(tt, owner, root, elem)
	case *SimpleType:
		return coerce(string(elem.TextContent()), KindOf(tt.Name, owner)), nil
	default:
		// Untyped element: text as-is.
		return string(elem.TextContent()), nil
	}
}
