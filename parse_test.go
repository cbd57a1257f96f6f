package xmlmap

import (
	"errors"
	"reflect"
	"testing"
)

// personSchema declares PersonType and EmployeeType (extending it), the
// fixture most parser tests run against.
func personSchema() *Schema {
	return &Schema{
		Elements: []*ElementDecl{
			{Name: "Person", Type: "PersonType"},
			{Name: "Employee", Type: "EmployeeType"},
		},
		ComplexTypes: []*ComplexType{
			{
				Name: "PersonType",
				Content: &ModelGroup{Kind: SequenceGroup, Particles: []Particle{
					&ElementDecl{Name: "name", Type: "string", MinOcc: 1},
					&ElementDecl{Name: "age", Type: "int", MinOcc: Optional},
				}},
				Attributes: []*AttributeDecl{
					{Name: "id", Type: "int"},
				},
			},
			{
				Name: "EmployeeType",
				Extension: &Derivation{
					Base: "PersonType",
					Content: &ModelGroup{Kind: SequenceGroup, Particles: []Particle{
						&ElementDecl{Name: "department", Type: "string", MinOcc: 1},
					}},
				},
			},
		},
	}
}

func TestParseInheritanceMergeOrder(t *testing.T) {
	obj, err := Parse(personSchema(), []byte(`<Employee><name>John</name><department>Engineering</department></Employee>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object{"name": "John", "department": "Engineering"}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v, want %v", obj, want)
	}
}

func TestParseOptionalOmission(t *testing.T) {
	obj, err := Parse(personSchema(), []byte(`<Person><name>Ann</name></Person>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := obj["age"]; ok {
		t.Errorf("absent optional element must yield no field, got %v", obj["age"])
	}
}

func TestParseAttributeCoercionAndDefault(t *testing.T) {
	schema := personSchema()
	schema.ComplexTypes[0].Attributes = append(schema.ComplexTypes[0].Attributes,
		&AttributeDecl{Name: "status", Type: "string", Default: "active"})

	obj, err := Parse(schema, []byte(`<Person id="7"><name>Ann</name></Person>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if obj["id"] != 7 {
		t.Errorf("id = %v (%T), want 7", obj["id"], obj["id"])
	}
	if obj["status"] != "active" {
		t.Errorf("status default = %v, want active", obj["status"])
	}

	// A present-but-empty attribute keeps its empty value; the default
	// applies only when absent.
	obj, err = Parse(schema, []byte(`<Person status=""><name>Ann</name></Person>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if obj["status"] != "" {
		t.Errorf("status = %q, want empty string", obj["status"])
	}
}

func TestParseChoiceExclusivity(t *testing.T) {
	schema := &Schema{
		Elements: []*ElementDecl{{Name: "Data", Type: "DataType"}},
		ComplexTypes: []*ComplexType{
			{
				Name: "DataType",
				Content: &ModelGroup{Kind: ChoiceGroup, Particles: []Particle{
					&ElementDecl{Name: "optionA", Type: "string", MinOcc: 1},
					&ElementDecl{Name: "optionB", Type: "string", MinOcc: 1},
				}},
			},
		},
	}

	obj, err := Parse(schema, []byte(`<Data><optionA>selected</optionA></Data>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object{"optionA": "selected"}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v, want %v", obj, want)
	}
}

func TestParseArrayThreshold(t *testing.T) {
	schema := &Schema{
		Elements: []*ElementDecl{{Name: "List", Type: "ListType"}},
		ComplexTypes: []*ComplexType{
			{
				Name: "ListType",
				Content: &ModelGroup{Kind: SequenceGroup, Particles: []Particle{
					&ElementDecl{Name: "item", Type: "string", MinOcc: Optional, MaxOcc: Unbounded},
					&ElementDecl{Name: "single", Type: "string", MinOcc: Optional},
				}},
			},
		},
	}

	tests := []struct {
		name string
		xml  string
		want Object
	}{
		{
			name: "multiple occurrences collect in order",
			xml:  `<List><item>a</item><item>b</item></List>`,
			want: Object{"item": []any{"a", "b"}},
		},
		{
			name: "single occurrence still a sequence",
			xml:  `<List><item>a</item></List>`,
			want: Object{"item": []any{"a"}},
		},
		{
			name: "zero occurrences still a sequence",
			xml:  `<List/>`,
			want: Object{"item": []any{}},
		},
		{
			name: "singular element stays a single value",
			xml:  `<List><single>x</single></List>`,
			want: Object{"item": []any{}, "single": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Parse(schema, []byte(tt.xml))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(obj, tt.want) {
				t.Errorf("got %v, want %v", obj, tt.want)
			}
		})
	}
}

func TestParseTypeCoercion(t *testing.T) {
	schema := &Schema{
		Elements: []*ElementDecl{{Name: "Stats", Type: "StatsType"}},
		ComplexTypes: []*ComplexType{
			{
				Name: "StatsType",
				Content: &ModelGroup{Kind: SequenceGroup, Particles: []Particle{
					&ElementDecl{Name: "count", Type: "integer"},
					&ElementDecl{Name: "active", Type: "boolean"},
					&ElementDecl{Name: "enabled", Type: "boolean"},
					&ElementDecl{Name: "ratio", Type: "double"},
					&ElementDecl{Name: "since", Type: "dateTime"},
				}},
			},
		},
	}

	obj, err := Parse(schema, []byte(
		`<Stats><count>42</count><active>true</active><enabled>1</enabled>`+
			`<ratio>0.5</ratio><since>2021-03-01T09:00:00Z</since></Stats>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := Object{
		"count":   42,
		"active":  true,
		"enabled": true,
		"ratio":   0.5,
		"since":   "2021-03-01T09:00:00Z",
	}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v, want %v", obj, want)
	}
}

func TestParseNamespaceInsensitivity(t *testing.T) {
	schema := personSchema()

	plain, err := Parse(schema, []byte(`<Person><name>Ann</name></Person>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prefixed, err := Parse(schema, []byte(
		`<ns:Person xmlns:ns="http://example.com/people"><ns:name>Ann</ns:name></ns:Person>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(plain, prefixed) {
		t.Errorf("prefixed parse %v differs from unprefixed %v", prefixed, plain)
	}
}

func TestParseCaseInsensitiveRootLookup(t *testing.T) {
	obj, err := Parse(personSchema(), []byte(`<person><name>Ann</name></person>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if obj["name"] != "Ann" {
		t.Errorf("name = %v, want Ann", obj["name"])
	}
}

func TestParseUnknownContentIgnored(t *testing.T) {
	obj, err := Parse(personSchema(), []byte(
		`<Person extra="x"><name>Ann</name><unknown>ignored</unknown></Person>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object{"name": "Ann"}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v, want %v", obj, want)
	}
}

func TestParseNestedComplexTypes(t *testing.T) {
	schema := &Schema{
		Elements: []*ElementDecl{{Name: "Company", Type: "CompanyType"}},
		ComplexTypes: []*ComplexType{
			{
				Name: "CompanyType",
				Content: &ModelGroup{Kind: SequenceGroup, Particles: []Particle{
					&ElementDecl{Name: "employee", Type: "PersonType", MinOcc: Optional, MaxOcc: Unbounded},
				}},
			},
			{
				Name: "PersonType",
				Content: &ModelGroup{Kind: SequenceGroup, Particles: []Particle{
					&ElementDecl{Name: "name", Type: "string"},
				}},
			},
		},
	}

	obj, err := Parse(schema, []byte(
		`<Company><employee><name>Ann</name></employee><employee><name>Bob</name></employee></Company>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object{"employee": []any{
		Object{"name": "Ann"},
		Object{"name": "Bob"},
	}}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v, want %v", obj, want)
	}
}

func TestParseSimpleContent(t *testing.T) {
	schema := &Schema{
		Elements: []*ElementDecl{{Name: "Price", Type: "PriceType"}},
		ComplexTypes: []*ComplexType{
			{
				Name: "PriceType",
				Extension: &Derivation{
					Base:          "decimal",
					SimpleContent: true,
					Attributes:    []*AttributeDecl{{Name: "currency", Type: "string"}},
				},
			},
		},
	}

	obj, err := Parse(schema, []byte(`<Price currency="EUR">9.95</Price>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object{"currency": "EUR", "value": 9.95}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v, want %v", obj, want)
	}
}

func TestParseSubstitutionGroup(t *testing.T) {
	schema := &Schema{
		Elements: []*ElementDecl{
			{Name: "Drawing", Type: "DrawingType"},
			{Name: "shape", Type: "string", Abstract: true},
			{Name: "circle", Type: "string", SubstitutionGroup: "shape"},
			{Name: "square", Type: "string", SubstitutionGroup: "shape"},
		},
		ComplexTypes: []*ComplexType{
			{
				Name: "DrawingType",
				Content: &ModelGroup{Kind: SequenceGroup, Particles: []Particle{
					&ElementRef{Ref: "shape", MinOcc: Optional, MaxOcc: Unbounded},
				}},
			},
		},
	}

	obj, err := Parse(schema, []byte(`<Drawing><circle>r=2</circle><square>a=3</square></Drawing>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object{
		"circle": []any{"r=2"},
		"square": []any{"a=3"},
	}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v, want %v", obj, want)
	}
}

func TestParseErrors(t *testing.T) {
	schema := personSchema()
	schema.Elements = append(schema.Elements, &ElementDecl{Name: "Orphan", Type: "NoSuchType"})

	tests := []struct {
		name    string
		xml     string
		wantErr error
	}{
		{"empty input", "", ErrMissingRootElement},
		{"undeclared root", "<Nobody/>", ErrMissingElementDeclaration},
		{"missing type", "<Orphan/>", ErrMissingComplexType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(schema, []byte(tt.xml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}
