package xmlmap

import (
	"reflect"
	"testing"
)

const libraryXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/library">
  <xs:element name="Library" type="LibraryType"/>
  <xs:complexType name="LibraryType">
    <xs:sequence>
      <xs:element name="book" type="BookType" minOccurs="0" maxOccurs="unbounded"/>
    </xs:sequence>
    <xs:attribute name="branch" type="xs:string" use="required"/>
  </xs:complexType>
  <xs:complexType name="BookType">
    <xs:sequence>
      <xs:element name="title" type="xs:string"/>
      <xs:element name="pages" type="xs:int" minOccurs="0"/>
      <xs:choice>
        <xs:element name="isbn" type="xs:string"/>
        <xs:element name="issn" type="xs:string"/>
      </xs:choice>
    </xs:sequence>
    <xs:attribute name="available" type="xs:boolean" default="true"/>
  </xs:complexType>
  <xs:complexType name="AudioBookType">
    <xs:complexContent>
      <xs:extension base="BookType">
        <xs:sequence>
          <xs:element name="narrator" type="xs:string"/>
        </xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
  <xs:simpleType name="Rating">
    <xs:restriction base="xs:int"/>
  </xs:simpleType>
  <xs:group name="identifiers">
    <xs:sequence>
      <xs:element name="id" type="xs:string"/>
    </xs:sequence>
  </xs:group>
  <xs:attributeGroup name="audit">
    <xs:attribute name="updatedAt" type="xs:dateTime"/>
  </xs:attributeGroup>
</xs:schema>`

func TestParseXSDModel(t *testing.T) {
	schema, err := ParseXSDBytes([]byte(libraryXSD))
	if err != nil {
		t.Fatalf("ParseXSDBytes failed: %v", err)
	}

	if schema.TargetNamespace != "http://example.com/library" {
		t.Errorf("targetNamespace = %q", schema.TargetNamespace)
	}
	if len(schema.Elements) != 1 || schema.Elements[0].Name != "Library" || schema.Elements[0].Type != "LibraryType" {
		t.Fatalf("top-level elements = %+v", schema.Elements)
	}
	if len(schema.ComplexTypes) != 3 {
		t.Fatalf("complex types = %d, want 3", len(schema.ComplexTypes))
	}
	if len(schema.SimpleTypes) != 1 || schema.SimpleTypes[0].Base != "int" {
		t.Errorf("simple types = %+v", schema.SimpleTypes)
	}
	if len(schema.Groups) != 1 || schema.Groups[0].Name != "identifiers" {
		t.Errorf("groups = %+v", schema.Groups)
	}
	if len(schema.AttributeGroups) != 1 || schema.AttributeGroups[0].Name != "audit" {
		t.Errorf("attribute groups = %+v", schema.AttributeGroups)
	}

	lib := schema.ComplexTypes[0]
	mg, ok := lib.Content.(*ModelGroup)
	if !ok || mg.Kind != SequenceGroup {
		t.Fatalf("LibraryType content = %#v", lib.Content)
	}
	book := mg.Particles[0].(*ElementDecl)
	if book.MinOcc != Optional || book.MaxOcc != Unbounded {
		t.Errorf("book occurs = %d..%d", book.MinOcc, book.MaxOcc)
	}
	if len(lib.Attributes) != 1 || !lib.Attributes[0].Required {
		t.Errorf("branch attribute = %+v", lib.Attributes)
	}

	audio := schema.ComplexTypes[2]
	if audio.Extension == nil || audio.Extension.Base != "BookType" {
		t.Fatalf("AudioBookType derivation = %+v", audio)
	}
	if audio.Extension.SimpleContent {
		t.Error("complexContent extension flagged as simple content")
	}
}

func TestParseXSDEndToEnd(t *testing.T) {
	schema, err := ParseXSDBytes([]byte(libraryXSD))
	if err != nil {
		t.Fatalf("ParseXSDBytes failed: %v", err)
	}

	obj, err := Parse(schema, []byte(`
<Library branch="downtown">
  <book available="false">
    <title>Dune</title>
    <pages>412</pages>
    <isbn>0441013597</isbn>
  </book>
  <book>
    <title>Nature Vol. 1</title>
    <issn>0028-0836</issn>
  </book>
</Library>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := Object{
		"branch": "downtown",
		"book": []any{
			Object{"available": false, "title": "Dune", "pages": 412, "isbn": "0441013597"},
			Object{"available": true, "title": "Nature Vol. 1", "issn": "0028-0836"},
		},
	}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v\nwant %v", obj, want)
	}

	rebuilt, err := Build(schema, "Library", obj)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	again, err := Parse(schema, []byte(rebuilt))
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if !reflect.DeepEqual(obj, again) {
		t.Errorf("round trip drift:\nfirst:  %v\nsecond: %v", obj, again)
	}
}

func TestParseXSDRejectsNonSchema(t *testing.T) {
	if _, err := ParseXSDBytes([]byte(`<notaschema/>`)); err == nil {
		t.Error("expected an error for a non-XSD document")
	}
}
