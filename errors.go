package xmlmap

import "errors"

// Error taxonomy. Every failure in this package is deterministic in
// (schema, input): none of them are transient, so callers must not retry.
// Referential failures (type/group/attribute-group not found) indicate a
// malformed or mismatched schema and are always a caller bug.
var (
	// ErrTypeNotFound is returned when a named type cannot be resolved in
	// a schema or any of its transitive includes.
	ErrTypeNotFound = errors.New("xmlmap: type not found")

	// ErrGroupNotFound is returned when a group reference cannot be resolved.
	ErrGroupNotFound = errors.New("xmlmap: group not found")

	// ErrAttributeGroupNotFound is returned when an attribute-group
	// reference cannot be resolved.
	ErrAttributeGroupNotFound = errors.New("xmlmap: attribute group not found")

	// ErrMissingRootElement is returned for empty or unparseable XML input.
	ErrMissingRootElement = errors.New("xmlmap: missing root element")

	// ErrMissingElementDeclaration is returned when a document's root tag
	// has no matching top-level element declaration in the schema.
	ErrMissingElementDeclaration = errors.New("xmlmap: missing element declaration")

	// ErrMissingComplexType is returned when a declared element's type
	// cannot be found in the schema, or resolves to something the mapper
	// cannot treat as a document root.
	ErrMissingComplexType = errors.New("xmlmap: missing complex type")

	// ErrAmbiguousRoot is returned by BuildDocument when the schema does
	// not declare exactly one top-level element; the root must then be
	// named explicitly via Build.
	ErrAmbiguousRoot = errors.New("xmlmap: ambiguous document root")

	// ErrNamespaceConflict is returned when a prefix is registered twice
	// with different URIs. Surfaced at registration time, never at parse time.
	ErrNamespaceConflict = errors.New("xmlmap: namespace prefix conflict")

	// ErrCyclicInheritance is returned when a type derivation chain loops
	// back on itself (A extends B extends A).
	ErrCyclicInheritance = errors.New("xmlmap: cyclic type inheritance")
)
