package main

import (
	"flag"
	"log"
	"os"

	"github.com/schemawire/xmlmap"
	"github.com/schemawire/xmlmap/internal/gen"
)

func main() {
	schemaPath := flag.String("schema", "", "XSD schema file")
	pkg := flag.String("package", "models", "package name for the generated file")
	out := flag.String("o", "", "output file (defaults to stdout)")
	flag.Parse()

	if *schemaPath == "" {
		log.Fatal("missing -schema")
	}

	schema, err := xmlmap.LoadSchemaFile(*schemaPath)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	f, err := gen.File(schema, *pkg)
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	w := os.Stdout
	if *out != "" {
		w, err = os.Create(*out)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *out, err)
		}
		defer w.Close()
	}
	if err := f.Render(w); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
}
