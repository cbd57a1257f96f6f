package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"

	"github.com/schemawire/xmlmap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "parse":
		runParse(os.Args[2:])
	case "build":
		runBuild(os.Args[2:])
	case "roundtrip":
		runRoundtrip(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  xmlmap parse     -schema <schema> [-dump] <doc.xml>")
	fmt.Println("  xmlmap build     -schema <schema> [-root <element>] <obj.json>")
	fmt.Println("  xmlmap roundtrip -schema <schema> [-root <element>] <doc.xml>")
	os.Exit(1)
}

// loadSchema accepts an XSD file or a declarative literal (.json/.yaml).
func loadSchema(path string) *xmlmap.Schema {
	if path == "" {
		log.Fatal("missing -schema")
	}
	var (
		schema *xmlmap.Schema
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			schema, err = xmlmap.SchemaFromJSON(data)
		}
	case ".yaml", ".yml":
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			schema, err = xmlmap.SchemaFromYAML(data)
		}
	default:
		schema, err = xmlmap.DefaultCache.Get(path)
	}
	if err != nil {
		log.Fatalf("Failed to load schema %s: %v", path, err)
	}
	return schema
}

func runParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "schema file (xsd, json or yaml)")
	dump := fs.Bool("dump", false, "spew-dump the parsed object for debugging")
	fs.Parse(args)
	if fs.NArg() < 1 {
		usage()
	}

	schema := loadSchema(*schemaPath)
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read document: %v", err)
	}

	obj, err := xmlmap.Parse(schema, data)
	if err != nil {
		log.Fatalf("Parse failed: %v", err)
	}

	if *dump {
		spew.Dump(obj)
		return
	}
	out, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode object: %v", err)
	}
	fmt.Println(string(out))
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "schema file (xsd, json or yaml)")
	root := fs.String("root", "", "root element name (optional for single-root schemas)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		usage()
	}

	schema := loadSchema(*schemaPath)
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read object: %v", err)
	}
	var obj xmlmap.Object
	if err := json.Unmarshal(data, &obj); err != nil {
		log.Fatalf("Failed to decode object: %v", err)
	}

	var out string
	if *root != "" {
		out, err = xmlmap.Build(schema, *root, obj)
	} else {
		out, err = xmlmap.BuildDocument(schema, obj)
	}
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}
	fmt.Println(out)
}

func runRoundtrip(args []string) {
	fs := flag.NewFlagSet("roundtrip", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "schema file (xsd, json or yaml)")
	root := fs.String("root", "", "root element name (optional for single-root schemas)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		usage()
	}

	schema := loadSchema(*schemaPath)
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read document: %v", err)
	}

	first, err := xmlmap.Parse(schema, data)
	if err != nil {
		log.Fatalf("Parse failed: %v", err)
	}

	var rebuilt string
	if *root != "" {
		rebuilt, err = xmlmap.Build(schema, *root, first)
	} else {
		rebuilt, err = xmlmap.BuildDocument(schema, first)
	}
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	second, err := xmlmap.Parse(schema, []byte(rebuilt))
	if err != nil {
		log.Fatalf("Re-parse failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		fmt.Println("Round trip MISMATCH")
		fmt.Println("--- first parse:")
		spew.Dump(first)
		fmt.Println("--- second parse:")
		spew.Dump(second)
		os.Exit(1)
	}
	fmt.Println("Round trip OK")
}
