package xmlmap

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/agentflare-ai/go-xmldom"
)

// XSDNamespace is the XML Schema namespace.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// ParseXSDBytes parses an XSD-formatted schema document into the Schema
// Model. Include/import locations are not followed; use LoadSchemaFile
// for that.
func ParseXSDBytes(data []byte) (*Schema, error) {
	decoder := xmldom.NewDecoderFromBytes(data)
	doc, err := decoder.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}
	return ParseXSD(doc)
}

// ParseXSD maps a W3C XSD document 1:1 onto the Schema Model.
func ParseXSD(doc xmldom.Document) (*Schema, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	root := doc.DocumentElement()
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	if string(root.NamespaceURI()) != XSDNamespace || string(root.LocalName()) != "schema" {
		return nil, fmt.Errorf("not an XSD schema document")
	}

	schema := &Schema{
		TargetNamespace: string(root.GetAttribute("targetNamespace")),
	}

	children := root.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}

		switch string(child.LocalName()) {
		case "element":
			if decl := parseXSDElement(child); decl != nil {
				schema.Elements = append(schema.Elements, decl)
			}
		case "complexType":
			if ct := parseXSDComplexType(child); ct != nil && ct.Name != "" {
				schema.ComplexTypes = append(schema.ComplexTypes, ct)
			}
		case "simpleType":
			if st := parseXSDSimpleType(child); st != nil && st.Name != "" {
				schema.SimpleTypes = append(schema.SimpleTypes, st)
			}
		case "group":
			if g := parseXSDNamedGroup(child); g != nil {
				schema.Groups = append(schema.Groups, g)
			}
		case "attributeGroup":
			if ag := parseXSDAttributeGroup(child); ag != nil {
				schema.AttributeGroups = append(schema.AttributeGroups, ag)
			}
		}
	}

	return schema, nil
}

// LoadSchemaFile loads an XSD file and recursively loads its
// xs:include/xs:import schemaLocations, resolved relative to the file's
// directory, attaching them as child schemas. Shared includes load once;
// include cycles are broken rather than followed.
func LoadSchemaFile(path string) (*Schema, error) {
	ld := &schemaLoader{
		loaded:  make(map[string]*Schema),
		loading: make(map[string]bool),
	}
	return ld.load(path)
}

type schemaLoader struct {
	loaded  map[string]*Schema
	loading map[string]bool
}

func (ld *schemaLoader) load(path string) (*Schema, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if s, ok := ld.loaded[abs]; ok {
		return s, nil
	}
	if ld.loading[abs] {
		// Include cycle: the schema higher up the chain already covers it.
		return nil, nil
	}
	ld.loading[abs] = true
	defer delete(ld.loading, abs)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	decoder := xmldom.NewDecoderFromBytes(data)
	doc, err := decoder.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	schema, err := ParseXSD(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	schema.Name = filepath.Base(path)

	for _, loc := range includeLocations(doc) {
		child, err := ld.load(filepath.Join(filepath.Dir(path), loc))
		if err != nil {
			return nil, err
		}
		if child != nil {
			schema.Includes = append(schema.Includes, child)
		}
	}

	ld.loaded[abs] = schema
	return schema, nil
}

// includeLocations returns the schemaLocation of every xs:include and
// xs:import child of the schema root, in document order.
func includeLocations(doc xmldom.Document) []string {
	root := doc.DocumentElement()
	if root == nil {
		return nil
	}
	var locs []string
	children := root.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "include", "import":
			if loc := string(child.GetAttribute("schemaLocation")); loc != "" {
				locs = append(locs, loc)
			}
		}
	}
	return locs
}

func parseXSDElement(elem xmldom.Element) *ElementDecl {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}

	decl := &ElementDecl{
		Name:   name,
		MinOcc: parseMinOccurs(elem),
		MaxOcc: parseMaxOccurs(elem),
	}

	if string(elem.GetAttribute("abstract")) == "true" {
		decl.Abstract = true
	}
	if sg := string(elem.GetAttribute("substitutionGroup")); sg != "" {
		decl.SubstitutionGroup = localPart(sg)
	}
	decl.Default = string(elem.GetAttribute("default"))
	if typeName := string(elem.GetAttribute("type")); typeName != "" {
		decl.Type = localPart(typeName)
	}

	// Inline anonymous type definitions.
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "complexType":
			decl.Inline = parseXSDComplexType(child)
		case "simpleType":
			decl.Inline = parseXSDSimpleType(child)
		}
	}

	return decl
}

func parseXSDComplexType(elem xmldom.Element) *ComplexType {
	ct := &ComplexType{
		Name: string(elem.GetAttribute("name")),
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}

		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			ct.Content = parseXSDModelGroup(child)
		case "group":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				ct.Content = &GroupRef{
					Ref:    localPart(ref),
					MinOcc: parseMinOccurs(child),
					MaxOcc: parseMaxOccurs(child),
				}
			}
		case "complexContent":
			ext, res := parseXSDDerivations(child, false)
			ct.Extension, ct.Restriction = ext, res
		case "simpleContent":
			ext, res := parseXSDDerivations(child, true)
			ct.Extension, ct.Restriction = ext, res
		case "attribute":
			if attr := parseXSDAttribute(child); attr != nil {
				ct.Attributes = append(ct.Attributes, attr)
			}
		case "attributeGroup":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				ct.AttributeGroups = append(ct.AttributeGroups, localPart(ref))
			}
		}
	}

	return ct
}

// parseXSDDerivations parses the extension or restriction inside a
// complexContent/simpleContent wrapper.
func parseXSDDerivations(elem xmldom.Element, simple bool) (ext, res *Derivation) {
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "extension":
			ext = parseXSDDerivation(child, simple)
		case "restriction":
			res = parseXSDDerivation(child, simple)
		}
	}
	return ext, res
}

func parseXSDDerivation(elem xmldom.Element, simple bool) *Derivation {
	d := &Derivation{
		Base:          localPart(string(elem.GetAttribute("base"))),
		SimpleContent: simple,
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			d.Content = parseXSDModelGroup(child)
		case "group":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				d.Content = &GroupRef{
					Ref:    localPart(ref),
					MinOcc: parseMinOccurs(child),
					MaxOcc: parseMaxOccurs(child),
				}
			}
		case "attribute":
			if attr := parseXSDAttribute(child); attr != nil {
				d.Attributes = append(d.Attributes, attr)
			}
		case "attributeGroup":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				d.AttributeGroups = append(d.AttributeGroups, localPart(ref))
			}
		}
	}

	return d
}

func parseXSDModelGroup(elem xmldom.Element) *ModelGroup {
	mg := &ModelGroup{
		MinOcc: parseMinOccurs(elem),
		MaxOcc: parseMaxOccurs(elem),
	}

	switch string(elem.LocalName()) {
	case "sequence":
		mg.Kind = SequenceGroup
	case "choice":
		mg.Kind = ChoiceGroup
	case "all":
		mg.Kind = AllGroup
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}

		switch string(child.LocalName()) {
		case "element":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				mg.Particles = append(mg.Particles, &ElementRef{
					Ref:    localPart(ref),
					MinOcc: parseMinOccurs(child),
					MaxOcc: parseMaxOccurs(child),
				})
			} else if decl := parseXSDElement(child); decl != nil {
				mg.Particles = append(mg.Particles, decl)
			}
		case "group":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				mg.Particles = append(mg.Particles, &GroupRef{
					Ref:    localPart(ref),
					MinOcc: parseMinOccurs(child),
					MaxOcc: parseMaxOccurs(child),
				})
			}
		case "sequence", "choice", "all":
			mg.Particles = append(mg.Particles, parseXSDModelGroup(child))
		case "any":
			mg.Particles = append(mg.Particles, &Wildcard{
				Namespace: string(child.GetAttribute("namespace")),
				MinOcc:    parseMinOccurs(child),
				MaxOcc:    parseMaxOccurs(child),
			})
		}
	}

	return mg
}

func parseXSDSimpleType(elem xmldom.Element) *SimpleType {
	st := &SimpleType{
		Name: string(elem.GetAttribute("name")),
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) == "restriction" {
			st.Base = localPart(string(child.GetAttribute("base")))
		}
		// list/union item types have no bearing on coercion: they fall
		// back to string treatment via the empty base.
	}

	return st
}

func parseXSDNamedGroup(elem xmldom.Element) *NamedGroup {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			return &NamedGroup{Name: name, Group: parseXSDModelGroup(child)}
		}
	}
	return nil
}

func parseXSDAttributeGroup(elem xmldom.Element) *AttributeGroup {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}

	ag := &AttributeGroup{Name: name}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) == "attribute" {
			if attr := parseXSDAttribute(child); attr != nil {
				ag.Attributes = append(ag.Attributes, attr)
			}
		}
	}
	return ag
}

func parseXSDAttribute(elem xmldom.Element) *AttributeDecl {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}

	attr := &AttributeDecl{
		Name:    name,
		Default: string(elem.GetAttribute("default")),
	}
	if string(elem.GetAttribute("use")) == "required" {
		attr.Required = true
	}
	if typeName := string(elem.GetAttribute("type")); typeName != "" {
		attr.Type = localPart(typeName)
	}
	return attr
}

// parseMinOccurs parses a minOccurs attribute; an explicit "0" maps to
// the Optional sentinel so the model's zero value stays the default of 1.
func parseMinOccurs(elem xmldom.Element) int {
	value := string(elem.GetAttribute("minOccurs"))
	if value == "" {
		return 1
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 1
	}
	if n == 0 {
		return Optional
	}
	return n
}

// parseMaxOccurs parses a maxOccurs attribute; "unbounded" maps to
// Unbounded.
func parseMaxOccurs(elem xmldom.Element) int {
	value := string(elem.GetAttribute("maxOccurs"))
	if value == "" {
		return 1
	}
	if value == "unbounded" {
		return Unbounded
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return 1
}
