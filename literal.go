package xmlmap

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Declarative schema literals: a plain-data shape mirroring the Schema
// Model that can be written as JSON or YAML (or as Go literals) and
// compiled into an immutable Schema. This is the second schema input
// surface next to XSD documents.
//
// Occurrence fields follow XSD conventions: minOccurs defaults to 1 and
// maxOccurs accepts a count or "unbounded".

// SchemaDef is the literal form of a Schema.
type SchemaDef struct {
	Name            string               `json:"name,omitempty" yaml:"name,omitempty"`
	TargetNamespace string               `json:"targetNamespace,omitempty" yaml:"targetNamespace,omitempty"`
	Elements        []*ElementDef        `json:"elements,omitempty" yaml:"elements,omitempty"`
	ComplexTypes    []*ComplexTypeDef    `json:"complexTypes,omitempty" yaml:"complexTypes,omitempty"`
	SimpleTypes     []*SimpleTypeDef     `json:"simpleTypes,omitempty" yaml:"simpleTypes,omitempty"`
	Groups          []*GroupDef          `json:"groups,omitempty" yaml:"groups,omitempty"`
	AttributeGroups []*AttributeGroupDef `json:"attributeGroups,omitempty" yaml:"attributeGroups,omitempty"`
	Includes        []*SchemaDef         `json:"includes,omitempty" yaml:"includes,omitempty"`
}

// ElementDef is the literal form of an ElementDecl.
type ElementDef struct {
	Name              string          `json:"name" yaml:"name"`
	Type              string          `json:"type,omitempty" yaml:"type,omitempty"`
	ComplexType       *ComplexTypeDef `json:"complexType,omitempty" yaml:"complexType,omitempty"`
	MinOccurs         *int            `json:"minOccurs,omitempty" yaml:"minOccurs,omitempty"`
	MaxOccurs         string          `json:"maxOccurs,omitempty" yaml:"maxOccurs,omitempty"`
	Abstract          bool            `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	SubstitutionGroup string          `json:"substitutionGroup,omitempty" yaml:"substitutionGroup,omitempty"`
	Default           string          `json:"default,omitempty" yaml:"default,omitempty"`
}

// ComplexTypeDef is the literal form of a ComplexType. At most one of
// Sequence/Choice/All/Group/Extension/Restriction may be set.
type ComplexTypeDef struct {
	Name            string          `json:"name,omitempty" yaml:"name,omitempty"`
	Sequence        []*ParticleDef  `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Choice          []*ParticleDef  `json:"choice,omitempty" yaml:"choice,omitempty"`
	All             []*ParticleDef  `json:"all,omitempty" yaml:"all,omitempty"`
	Group           string          `json:"group,omitempty" yaml:"group,omitempty"`
	Extension       *DerivationDef  `json:"extension,omitempty" yaml:"extension,omitempty"`
	Restriction     *DerivationDef  `json:"restriction,omitempty" yaml:"restriction,omitempty"`
	Attributes      []*AttributeDef `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	AttributeGroups []string        `json:"attributeGroups,omitempty" yaml:"attributeGroups,omitempty"`
}

// DerivationDef is the literal form of an extension or restriction.
type DerivationDef struct {
	Base            string          `json:"base" yaml:"base"`
	Sequence        []*ParticleDef  `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Choice          []*ParticleDef  `json:"choice,omitempty" yaml:"choice,omitempty"`
	All             []*ParticleDef  `json:"all,omitempty" yaml:"all,omitempty"`
	Group           string          `json:"group,omitempty" yaml:"group,omitempty"`
	SimpleContent   bool            `json:"simpleContent,omitempty" yaml:"simpleContent,omitempty"`
	Attributes      []*AttributeDef `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	AttributeGroups []string        `json:"attributeGroups,omitempty" yaml:"attributeGroups,omitempty"`
}

// ParticleDef is one content-model node: an inline element, an element
// reference, a group reference, a nested compositor, or a wildcard.
type ParticleDef struct {
	Element   *ElementDef    `json:"element,omitempty" yaml:"element,omitempty"`
	Ref       string         `json:"ref,omitempty" yaml:"ref,omitempty"`
	Group     string         `json:"group,omitempty" yaml:"group,omitempty"`
	Sequence  []*ParticleDef `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Choice    []*ParticleDef `json:"choice,omitempty" yaml:"choice,omitempty"`
	All       []*ParticleDef `json:"all,omitempty" yaml:"all,omitempty"`
	Any       bool           `json:"any,omitempty" yaml:"any,omitempty"`
	MinOccurs *int           `json:"minOccurs,omitempty" yaml:"minOccurs,omitempty"`
	MaxOccurs string         `json:"maxOccurs,omitempty" yaml:"maxOccurs,omitempty"`
}

// AttributeDef is the literal form of an AttributeDecl.
type AttributeDef struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
}

// GroupDef is the literal form of a NamedGroup.
type GroupDef struct {
	Name     string         `json:"name" yaml:"name"`
	Sequence []*ParticleDef `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Choice   []*ParticleDef `json:"choice,omitempty" yaml:"choice,omitempty"`
	All      []*ParticleDef `json:"all,omitempty" yaml:"all,omitempty"`
}

// AttributeGroupDef is the literal form of an AttributeGroup.
type AttributeGroupDef struct {
	Name       string          `json:"name" yaml:"name"`
	Attributes []*AttributeDef `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// SchemaFromJSON decodes and compiles a JSON schema literal.
func SchemaFromJSON(data []byte) (*Schema, error) {
	var def SchemaDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("invalid schema literal: %w", err)
	}
	return def.Compile()
}

// SchemaFromYAML decodes and compiles a YAML schema literal.
func SchemaFromYAML(data []byte) (*Schema, error) {
	var def SchemaDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("invalid schema literal: %w", err)
	}
	return def.Compile()
}

// Compile turns the literal into a Schema Model value.
func (d *SchemaDef) Compile() (*Schema, error) {
	s := &Schema{
		Name:            d.Name,
		TargetNamespace: d.TargetNamespace,
	}

	for _, ed := range d.Elements {
		decl, err := ed.compile()
		if err != nil {
			return nil, err
		}
		s.Elements = append(s.Elements, decl)
	}
	for _, ctd := range d.ComplexTypes {
		ct, err := ctd.compile()
		if err != nil {
			return nil, err
		}
		if ct.Name == "" {
			return nil, fmt.Errorf("top-level complex type without a name")
		}
		s.ComplexTypes = append(s.ComplexTypes, ct)
	}
	for _, std := range d.SimpleTypes {
		s.SimpleTypes = append(s.SimpleTypes, &SimpleType{Name: std.Name, Base: localPart(std.Base)})
	}
	for _, gd := range d.Groups {
		mg, err := gd.compile()
		if err != nil {
			return nil, err
		}
		s.Groups = append(s.Groups, &NamedGroup{Name: gd.Name, Group: mg})
	}
	for _, agd := range d.AttributeGroups {
		ag := &AttributeGroup{Name: agd.Name}
		for _, ad := range agd.Attributes {
			ag.Attributes = append(ag.Attributes, ad.compile())
		}
		s.AttributeGroups = append(s.AttributeGroups, ag)
	}
	for _, inc := range d.Includes {
		child, err := inc.Compile()
		if err != nil {
			return nil, err
		}
		s.Includes = append(s.Includes, child)
	}

	return s, nil
}

// SimpleTypeDef is the literal form of a SimpleType.
type SimpleTypeDef struct {
	Name string `json:"name" yaml:"name"`
	Base string `json:"base,omitempty" yaml:"base,omitempty"`
}

func (ed *ElementDef) compile() (*ElementDecl, error) {
	if ed.Name == "" {
		return nil, fmt.Errorf("element without a name")
	}
	minOcc, maxOcc, err := compileOccurs(ed.MinOccurs, ed.MaxOccurs)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", ed.Name, err)
	}
	decl := &ElementDecl{
		Name:              ed.Name,
		Type:              localPart(ed.Type),
		MinOcc:            minOcc,
		MaxOcc:            maxOcc,
		Abstract:          ed.Abstract,
		SubstitutionGroup: localPart(ed.SubstitutionGroup),
		Default:           ed.Default,
	}
	if ed.ComplexType != nil {
		ct, err := ed.ComplexType.compile()
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", ed.Name, err)
		}
		decl.Inline = ct
	}
	return decl, nil
}

func (ctd *ComplexTypeDef) compile() (*ComplexType, error) {
	ct := &ComplexType{
		Name:            ctd.Name,
		AttributeGroups: ctd.AttributeGroups,
	}
	for _, ad := range ctd.Attributes {
		ct.Attributes = append(ct.Attributes, ad.compile())
	}

	forms := 0
	if len(ctd.Sequence)+len(ctd.Choice)+len(ctd.All) > 0 || ctd.Group != "" {
		forms++
	}
	if ctd.Extension != nil {
		forms++
	}
	if ctd.Restriction != nil {
		forms++
	}
	if forms > 1 {
		return nil, fmt.Errorf("complex type %q mixes direct content with a derivation", ctd.Name)
	}

	switch {
	case ctd.Extension != nil:
		d, err := ctd.Extension.compile()
		if err != nil {
			return nil, fmt.Errorf("complex type %q: %w", ctd.Name, err)
		}
		ct.Extension = d
	case ctd.Restriction != nil:
		d, err := ctd.Restriction.compile()
		if err != nil {
			return nil, fmt.Errorf("complex type %q: %w", ctd.Name, err)
		}
		ct.Restriction = d
	default:
		content, err := compileCompositor(ctd.Sequence, ctd.Choice, ctd.All, nil, ctd.Group)
		if err != nil {
			return nil, fmt.Errorf("complex type %q: %w", ctd.Name, err)
		}
		if content != nil {
			ct.Content = content
		}
	}

	return ct, nil
}

func (dd *DerivationDef) compile() (*Derivation, error) {
	if dd.Base == "" {
		return nil, fmt.Errorf("derivation without a base")
	}
	d := &Derivation{
		Base:            localPart(dd.Base),
		SimpleContent:   dd.SimpleContent,
		AttributeGroups: dd.AttributeGroups,
	}
	for _, ad := range dd.Attributes {
		d.Attributes = append(d.Attributes, ad.compile())
	}
	content, err := compileCompositor(dd.Sequence, dd.Choice, dd.All, nil, dd.Group)
	if err != nil {
		return nil, err
	}
	d.Content = content
	return d, nil
}

func (gd *GroupDef) compile() (*ModelGroup, error) {
	content, err := compileCompositor(gd.Sequence, gd.Choice, gd.All, nil, "")
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", gd.Name, err)
	}
	if content == nil {
		return nil, fmt.Errorf("group %q has no content model", gd.Name)
	}
	// Without a group reference, compileCompositor always builds a
	// *ModelGroup.
	return content.(*ModelGroup), nil
}

func (ad *AttributeDef) compile() *AttributeDecl {
	return &AttributeDecl{
		Name:     ad.Name,
		Type:     localPart(ad.Type),
		Required: ad.Required,
		Default:  ad.Default,
	}
}

// compileCompositor builds the model group for whichever of
// sequence/choice/all/group is present; at most one may be.
func compileCompositor(seq, choice, all []*ParticleDef, occ *ParticleDef, groupRef string) (Particle, error) {
	set := 0
	if len(seq) > 0 {
		set++
	}
	if len(choice) > 0 {
		set++
	}
	if len(all) > 0 {
		set++
	}
	if groupRef != "" {
		set++
	}
	if set > 1 {
		return nil, fmt.Errorf("multiple content models declared")
	}

	minOcc, maxOcc := 1, 1
	if occ != nil {
		var err error
		minOcc, maxOcc, err = compileOccurs(occ.MinOccurs, occ.MaxOccurs)
		if err != nil {
			return nil, err
		}
	}

	if groupRef != "" {
		return &GroupRef{Ref: localPart(groupRef), MinOcc: minOcc, MaxOcc: maxOcc}, nil
	}

	var kind GroupKind
	var defs []*ParticleDef
	switch {
	case len(seq) > 0:
		kind, defs = SequenceGroup, seq
	case len(choice) > 0:
		kind, defs = ChoiceGroup, choice
	case len(all) > 0:
		kind, defs = AllGroup, all
	default:
		return nil, nil
	}

	mg := &ModelGroup{Kind: kind, MinOcc: minOcc, MaxOcc: maxOcc}
	for _, pd := range defs {
		p, err := pd.compile()
		if err != nil {
			return nil, err
		}
		if p != nil {
			mg.Particles = append(mg.Particles, p)
		}
	}
	return mg, nil
}

func (pd *ParticleDef) compile() (Particle, error) {
	minOcc, maxOcc, err := compileOccurs(pd.MinOccurs, pd.MaxOccurs)
	if err != nil {
		return nil, err
	}

	switch {
	case pd.Element != nil:
		return pd.Element.compile()
	case pd.Ref != "":
		return &ElementRef{Ref: localPart(pd.Ref), MinOcc: minOcc, MaxOcc: maxOcc}, nil
	case pd.Any:
		return &Wildcard{MinOcc: minOcc, MaxOcc: maxOcc}, nil
	default:
		return compileCompositor(pd.Sequence, pd.Choice, pd.All, pd, pd.Group)
	}
}

// compileOccurs maps literal occurrence fields to the model's ints:
// minOccurs defaults to 1 (an explicit 0 becomes the Optional sentinel),
// maxOccurs accepts a count or "unbounded".
func compileOccurs(minOccurs *int, maxOccurs string) (int, int, error) {
	minOcc := 1
	if minOccurs != nil {
		minOcc = *minOccurs
		if minOcc == 0 {
			minOcc = Optional
		}
	}
	maxOcc := 1
	switch maxOccurs {
	case "":
	case "unbounded":
		maxOcc = Unbounded
	default:
		n, err := strconv.Atoi(maxOccurs)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid maxOccurs %q", maxOccurs)
		}
		maxOcc = n
	}
	return minOcc, maxOcc, nil
}
