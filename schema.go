package xmlmap

// Occurrence fields read their zero value as the XSD default of 1, so
// struct-literal schemas stay terse. Explicit bounds outside the default
// use the sentinels below.
const (
	// Unbounded is the maxOccurs value representing xs:maxOccurs="unbounded".
	Unbounded = -1

	// Optional is the minOccurs value representing xs:minOccurs="0".
	// A zero MinOcc field means the default of 1, so an explicitly
	// optional particle needs its own sentinel.
	Optional = -1
)

// Schema is a named grammar unit: top-level element declarations, named
// type definitions, named groups and attribute groups, plus any included
// or imported child schemas. A Schema is constructed once (from an XSD
// document, a declarative literal, or a direct struct literal) and is
// immutable afterwards, so it may be shared read-only across any number
// of concurrent Parse/Build calls.
//
// Element, complex-type and group names must be unique within the set
// reachable from a single resolution root (the schema plus its
// transitive includes).
type Schema struct {
	Name            string
	TargetNamespace string
	Elements        []*ElementDecl
	ComplexTypes    []*ComplexType
	SimpleTypes     []*SimpleType
	Groups          []*NamedGroup
	AttributeGroups []*AttributeGroup
	Includes        []*Schema
}

// ElementDecl declares an element: its name, its type (referenced by name
// or supplied inline), its occurrence range, and optionally an abstract
// flag with a substitution-group head reference.
//
// An abstract element never appears directly in a document; it is only a
// grouping point that concrete substitutes stand in for.
type ElementDecl struct {
	Name string

	// Type names the element's type; empty when Inline is set or when the
	// element is untyped (treated as string).
	Type   string
	Inline Type

	MinOcc int // Optional for minOccurs="0", 0 means the default of 1
	MaxOcc int // Unbounded for "unbounded", 0 means the default of 1

	Abstract          bool
	SubstitutionGroup string
	Default           string
}

// Type is implemented by ComplexType and SimpleType.
type Type interface {
	TypeName() string
}

// SimpleType is a named simple type deriving from a base type. Only the
// base chain matters to the mapper: it is walked down to a builtin kind
// to pick the coercion rule. Facets are not modelled.
type SimpleType struct {
	Name string
	Base string
}

func (st *SimpleType) TypeName() string { return st.Name }

// ComplexType describes the attributes and child elements an element of
// this type carries. Exactly one of Content, Extension, Restriction is
// set: either a direct content model or a derivation from a named base.
type ComplexType struct {
	Name string

	Content     Particle // *ModelGroup or *GroupRef
	Extension   *Derivation
	Restriction *Derivation

	Attributes      []*AttributeDecl
	AttributeGroups []string
}

func (ct *ComplexType) TypeName() string { return ct.Name }

// Derivation carries the members a derived type adds (extension) or
// declares outright (restriction), relative to a named base type.
// SimpleContent marks derivations wrapped in xs:simpleContent: the base
// is then a simple type and the element's text maps to the "value" field.
type Derivation struct {
	Base            string
	Content         Particle
	Attributes      []*AttributeDecl
	AttributeGroups []string
	SimpleContent   bool
}

// AttributeDecl declares an attribute. Default applies only when the
// attribute is absent from the document, never when present empty.
type AttributeDecl struct {
	Name     string
	Type     string
	Required bool
	Default  string
}

// AttributeGroup is a named, reusable set of attribute declarations.
type AttributeGroup struct {
	Name       string
	Attributes []*AttributeDecl
}

// NamedGroup is a named, reusable content-model fragment referenced from
// content models via GroupRef.
type NamedGroup struct {
	Name  string
	Group *ModelGroup
}

// GroupKind is the compositor of a model group.
type GroupKind string

const (
	SequenceGroup GroupKind = "sequence" // ordered, children appear in order
	ChoiceGroup   GroupKind = "choice"   // exactly one child variant at a time
	AllGroup      GroupKind = "all"      // unordered, per-child occurs still apply
)

// Particle is a node in a content model: an element declaration, an
// element reference, a nested model group, a group reference, or a
// wildcard.
type Particle interface {
	MinOccurs() int
	MaxOccurs() int
}

// ModelGroup is a sequence/choice/all compositor with nested particles.
type ModelGroup struct {
	Kind      GroupKind
	Particles []Particle
	MinOcc    int
	MaxOcc    int
}

func (g *ModelGroup) MinOccurs() int { return minOccursOrOne(g.MinOcc) }
func (g *ModelGroup) MaxOccurs() int { return maxOccursOrOne(g.MaxOcc) }

// ElementRef references a top-level element declaration by name,
// carrying its own occurrence range at the point of use.
type ElementRef struct {
	Ref    string
	MinOcc int
	MaxOcc int
}

func (r *ElementRef) MinOccurs() int { return minOccursOrOne(r.MinOcc) }
func (r *ElementRef) MaxOccurs() int { return maxOccursOrOne(r.MaxOcc) }

// GroupRef references a named group by name; the named group's content
// is substituted at this point, under this reference's occurrence range.
type GroupRef struct {
	Ref    string
	MinOcc int
	MaxOcc int
}

func (r *GroupRef) MinOccurs() int { return minOccursOrOne(r.MinOcc) }
func (r *GroupRef) MaxOccurs() int { return maxOccursOrOne(r.MaxOcc) }

// Wildcard is an xs:any placeholder. The mapper skips wildcard content:
// unknown document content is ignored by design.
type Wildcard struct {
	Namespace string
	MinOcc    int
	MaxOcc    int
}

func (w *Wildcard) MinOccurs() int { return minOccursOrOne(w.MinOcc) }
func (w *Wildcard) MaxOccurs() int { return maxOccursOrOne(w.MaxOcc) }

func (e *ElementDecl) MinOccurs() int { return minOccursOrOne(e.MinOcc) }
func (e *ElementDecl) MaxOccurs() int { return maxOccursOrOne(e.MaxOcc) }

// minOccursOrOne maps the zero value to the XSD default of 1 and the
// Optional sentinel to an effective minOccurs of 0.
func minOccursOrOne(n int) int {
	switch n {
	case 0:
		return 1
	case Optional:
		return 0
	}
	return n
}

// maxOccursOrOne maps the zero value to the XSD default of 1, so that
// both parsed schemas and hand-written struct literals read naturally.
func maxOccursOrOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

// isMany reports whether a maxOccurs value permits more than one occurrence.
func isMany(maxOcc int) bool {
	return maxOcc == Unbounded || maxOcc > 1
}
