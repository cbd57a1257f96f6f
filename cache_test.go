package xmlmap

import (
	"os"
	"path/filepath"
	"testing"
)

const commonXSD = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="street" type="xs:string"/>
      <xs:element name="city" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

const customerXSD = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:include schemaLocation="common.xsd"/>
  <xs:element name="Customer" type="CustomerType"/>
  <xs:complexType name="CustomerType">
    <xs:sequence>
      <xs:element name="name" type="xs:string"/>
      <xs:element name="address" type="AddressType" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

func writeSchemaFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "common.xsd"), []byte(commonXSD), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "customer.xsd"), []byte(customerXSD), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadSchemaFileWithIncludes(t *testing.T) {
	dir := writeSchemaFiles(t)

	schema, err := LoadSchemaFile(filepath.Join(dir, "customer.xsd"))
	if err != nil {
		t.Fatalf("LoadSchemaFile failed: %v", err)
	}
	if len(schema.Includes) != 1 {
		t.Fatalf("includes = %d, want 1", len(schema.Includes))
	}

	// Cross-schema type resolution through the include.
	_, owner, err := schema.FindType("AddressType")
	if err != nil {
		t.Fatalf("FindType through include failed: %v", err)
	}
	if owner != schema.Includes[0] {
		t.Error("AddressType should be owned by the included schema")
	}

	obj, err := Parse(schema, []byte(
		`<Customer><name>Ann</name><address><street>Main St 1</street><city>Springfield</city></address></Customer>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	addr, ok := obj["address"].(Object)
	if !ok || addr["city"] != "Springfield" {
		t.Errorf("address = %v", obj["address"])
	}
}

func TestSchemaCacheSharesLoads(t *testing.T) {
	dir := writeSchemaFiles(t)
	cache := NewSchemaCache(dir)

	first, err := cache.Get("customer.xsd")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := cache.Get("customer.xsd")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if first != second {
		t.Error("cache must hand out the same schema instance")
	}

	cache.Invalidate("customer.xsd")
	third, err := cache.Get("customer.xsd")
	if err != nil {
		t.Fatalf("Get after Invalidate failed: %v", err)
	}
	if third == first {
		t.Error("Invalidate should force a reload")
	}
}

func TestSchemaCacheMissingFile(t *testing.T) {
	cache := NewSchemaCache(t.TempDir())
	if _, err := cache.Get("nope.xsd"); err == nil {
		t.Error("expected an error for a missing schema file")
	}
}
