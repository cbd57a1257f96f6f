package xmlmap

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a declared type into the coercion rule shared by the
// parser and the builder. The table is symmetric so values round-trip:
// what the parser reads, the builder writes back in canonical form.
type Kind int

const (
	// KindString passes text through unchanged. This is also the
	// deliberate fallback for unknown or unlisted types.
	KindString Kind = iota
	// KindInt parses decimal digits into a native integer.
	KindInt
	// KindBool parses "true" and "1" as true, anything else as false,
	// and always writes "true"/"false".
	KindBool
	// KindFloat parses decimal/float/double into a native float.
	KindFloat
	// KindDateTime keeps date/time values in their original textual
	// form; they are not parsed into date values.
	KindDateTime
)

// builtinKinds maps XSD builtin local names onto coercion kinds. Types
// not listed here coerce as strings.
var builtinKinds = map[string]Kind{
	"string":           KindString,
	"normalizedString": KindString,
	"token":            KindString,
	"language":         KindString,
	"Name":             KindString,
	"NCName":           KindString,
	"NMTOKEN":          KindString,
	"ID":               KindString,
	"IDREF":            KindString,
	"ENTITY":           KindString,
	"QName":            KindString,
	"anyURI":           KindString,
	"hexBinary":        KindString,
	"base64Binary":     KindString,

	"int":                KindInt,
	"integer":            KindInt,
	"long":               KindInt,
	"short":              KindInt,
	"byte":               KindInt,
	"unsignedLong":       KindInt,
	"unsignedInt":        KindInt,
	"unsignedShort":      KindInt,
	"unsignedByte":       KindInt,
	"positiveInteger":    KindInt,
	"negativeInteger":    KindInt,
	"nonPositiveInteger": KindInt,
	"nonNegativeInteger": KindInt,

	"boolean": KindBool,

	"decimal": KindFloat,
	"float":   KindFloat,
	"double":  KindFloat,

	"date":       KindDateTime,
	"dateTime":   KindDateTime,
	"time":       KindDateTime,
	"duration":   KindDateTime,
	"gYear":      KindDateTime,
	"gYearMonth": KindDateTime,
	"gMonth":     KindDateTime,
	"gMonthDay":  KindDateTime,
	"gDay":       KindDateTime,
}

// KindOf resolves a declared type name to its coercion kind, walking a
// named simple type's base chain down to a builtin. Unknown names
// resolve to KindString.
func KindOf(typeName string, s *Schema) Kind {
	seen := make(map[string]bool)
	for typeName != "" && !seen[typeName] {
		seen[typeName] = true
		local := localPart(typeName)
		if k, ok := builtinKinds[local]; ok {
			return k
		}
		if s == nil {
			break
		}
		t, owner, err := s.FindType(local)
		if err != nil {
			break
		}
		st, ok := t.(*SimpleType)
		if !ok {
			break
		}
		typeName, s = st.Base, owner
	}
	return KindString
}

// coerce converts the textual form of a value into its parsed
// representation. Non-string kinds trim surrounding whitespace first;
// strings are kept as-is.
func coerce(text string, k Kind) any {
	switch k {
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return text
		}
		return n
	case KindBool:
		t := strings.TrimSpace(text)
		return t == "true" || t == "1"
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return text
		}
		return f
	default:
		// KindString and KindDateTime keep the original textual form.
		return text
	}
}

// formatValue converts a parsed representation back to text. It accepts
// the value shapes a canonical object can legally hold, including
// float64 for integer fields as produced by JSON decoding.
func formatValue(v any, k Kind) string {
	switch k {
	case KindBool:
		if b, ok := v.(bool); ok {
			if b {
				return "true"
			}
			return "false"
		}
	case KindInt:
		switch n := v.(type) {
		case int:
			return strconv.Itoa(n)
		case int64:
			return strconv.FormatInt(n, 10)
		case float64:
			return strconv.FormatInt(int64(n), 10)
		}
	case KindFloat:
		switch f := v.(type) {
		case float64:
			return strconv.FormatFloat(f, 'g', -1, 64)
		case int:
			return strconv.Itoa(f)
		}
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}
