// Package gen emits Go type declarations from a schema. It consumes
// only the Schema Model and its flattened views; it knows nothing about
// parsing or building documents.
package gen

import (
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/schemawire/xmlmap"
)

// File renders one struct per named complex type reachable from s
// (including its child schemas) into a generated Go file.
func File(s *xmlmap.Schema, pkg string) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.PackageComment("Code generated by xmlmap-gen. DO NOT EDIT.")

	types := collectComplexTypes(s, make(map[*xmlmap.Schema]bool))
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })

	for _, ct := range types {
		shape, err := xmlmap.Flatten(ct, s)
		if err != nil {
			return nil, fmt.Errorf("flatten %s: %w", ct.Name, err)
		}

		var fields []jen.Code
		for _, ae := range shape.Attributes {
			fields = append(fields, jen.Id(goName(ae.Attr.Name)).
				Add(scalarCode(xmlmap.KindOf(ae.Attr.Type, s))).
				Tag(map[string]string{"xml": ae.Attr.Name + ",attr"}))
		}
		if shape.TextType != "" {
			fields = append(fields, jen.Id("Value").
				Add(scalarCode(xmlmap.KindOf(shape.TextType, s))).
				Tag(map[string]string{"xml": ",chardata"}))
		}
		for _, fe := range shape.Elements {
			fields = append(fields, fieldCode(fe, s))
		}

		f.Type().Id(goName(ct.Name)).Struct(fields...)
	}

	return f, nil
}

func collectComplexTypes(s *xmlmap.Schema, seen map[*xmlmap.Schema]bool) []*xmlmap.ComplexType {
	if seen[s] {
		return nil
	}
	seen[s] = true

	var out []*xmlmap.ComplexType
	out = append(out, s.ComplexTypes...)
	for _, inc := range s.Includes {
		out = append(out, collectComplexTypes(inc, seen)...)
	}
	return out
}

func fieldCode(fe xmlmap.FieldEntry, s *xmlmap.Schema) jen.Code {
	decl := fe.Element
	elem := elemCode(decl, s)
	if fe.Array {
		elem = jen.Index().Add(elem)
	}
	return jen.Id(goName(decl.Name)).Add(elem).Tag(map[string]string{"xml": decl.Name})
}

// elemCode picks the Go type for one element: a generated struct
// reference for named complex types, a scalar for simple ones, and a
// loose map for anonymous inline complex types.
func elemCode(decl *xmlmap.ElementDecl, s *xmlmap.Schema) *jen.Statement {
	if decl.Inline != nil {
		if _, ok := decl.Inline.(*xmlmap.ComplexType); ok {
			return jen.Map(jen.String()).Any()
		}
		return jen.String()
	}
	if decl.Type == "" {
		return jen.String()
	}
	if t, _, err := s.FindType(decl.Type); err == nil {
		if ct, ok := t.(*xmlmap.ComplexType); ok {
			return jen.Op("*").Id(goName(ct.Name))
		}
	}
	return scalarCode(xmlmap.KindOf(decl.Type, s))
}

func scalarCode(k xmlmap.Kind) *jen.Statement {
	switch k {
	case xmlmap.KindInt:
		return jen.Int()
	case xmlmap.KindBool:
		return jen.Bool()
	case xmlmap.KindFloat:
		return jen.Float64()
	default:
		return jen.String()
	}
}

// goName turns a schema name into an exported Go identifier.
func goName(name string) string {
	return inflect.Camelize(inflect.Underscore(name))
}
